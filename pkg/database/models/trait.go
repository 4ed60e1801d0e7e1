package models

import "gorm.io/gorm/schema"

// Ability is an entry of the ability catalog
type Ability struct {
	ID              int    `gorm:"column:id;primaryKey;size:32" json:"id"`
	Name            string `gorm:"column:name;size:256" json:"name"`
	Icon            string `gorm:"column:icon;size:255" json:"icon"`
	Expertise       bool   `gorm:"column:expertise;default:false" json:"expertise"`
	RequirementID   *int   `gorm:"column:requirementId;size:32" json:"requirementId"`
	Content         string `gorm:"column:content;type:text" json:"content"`
	VisibleToPlayer bool   `gorm:"column:visibleToPlayer;default:false" json:"visibleToPlayer"`

	// Relationships
	CharacterAbilities []CharacterAbility `gorm:"foreignKey:AbilityID;constraint:OnDelete:CASCADE" json:"-"`
	AbilityAvailable   []AbilityAvailable `gorm:"foreignKey:AbilityID;constraint:OnDelete:CASCADE" json:"abilityAvailable,omitempty"`
}

// Feature is an entry of the feature (merit/flaw) catalog
type Feature struct {
	ID              int    `gorm:"column:id;primaryKey;size:32" json:"id"`
	Name            string `gorm:"column:name;size:256" json:"name"`
	Cost            *int   `gorm:"column:cost;size:32" json:"cost"`
	Content         string `gorm:"column:content;type:text" json:"content"`
	VisibleToPlayer bool   `gorm:"column:visibleToPlayer;default:false" json:"visibleToPlayer"`

	// Relationships
	CharacterFeatures []CharacterFeature `gorm:"foreignKey:FeatureID;constraint:OnDelete:CASCADE" json:"-"`
	FeatureAvailable  []FeatureAvailable `gorm:"foreignKey:FeatureID;constraint:OnDelete:CASCADE" json:"featureAvailable,omitempty"`
}

// AbilityAvailable allows a Clan to take an Ability
type AbilityAvailable struct {
	ID        int `gorm:"column:id;primaryKey;size:32" json:"id"`
	AbilityID int `gorm:"column:abilityId;size:32;not null" json:"abilityId"`
	ClanID    int `gorm:"column:clanId;size:32;not null" json:"clanId"`

	Ability *Ability `gorm:"foreignKey:AbilityID;constraint:OnDelete:CASCADE" json:"ability,omitempty"`
	Clan    *Clan    `gorm:"foreignKey:ClanID;constraint:OnDelete:CASCADE" json:"clan,omitempty"`
}

// FeatureAvailable allows a Clan to take a Feature.
// The feature reference lives in the abilityId column.
type FeatureAvailable struct {
	ID        int `gorm:"column:id;primaryKey;size:32" json:"id"`
	FeatureID int `gorm:"column:abilityId;size:32;not null" json:"featureId"`
	ClanID    int `gorm:"column:clanId;size:32;not null" json:"clanId"`

	Feature *Feature `gorm:"foreignKey:FeatureID;constraint:OnDelete:CASCADE" json:"feature,omitempty"`
	Clan    *Clan    `gorm:"foreignKey:ClanID;constraint:OnDelete:CASCADE" json:"clan,omitempty"`
}

// CharacterAbility records an Ability a Character has
type CharacterAbility struct {
	ID          int  `gorm:"column:id;primaryKey;size:32" json:"id"`
	CharacterID int  `gorm:"column:characterId;size:32;not null" json:"characterId"`
	AbilityID   *int `gorm:"column:abilityId;size:32" json:"abilityId"`

	Ability   *Ability   `gorm:"foreignKey:AbilityID;constraint:OnDelete:CASCADE" json:"ability,omitempty"`
	Character *Character `gorm:"foreignKey:CharacterID;constraint:OnDelete:CASCADE" json:"-"`
}

// CharacterFeature records a Feature a Character has
type CharacterFeature struct {
	ID              int    `gorm:"column:id;primaryKey;size:32" json:"id"`
	CharacterID     int    `gorm:"column:characterId;size:32;not null" json:"characterId"`
	FeatureID       *int   `gorm:"column:featureId;size:32" json:"featureId"`
	Description     string `gorm:"column:description;type:text" json:"description"`
	VisibleToPlayer bool   `gorm:"column:visibleToPlayer;default:false" json:"visibleToPlayer"`

	Feature   *Feature   `gorm:"foreignKey:FeatureID;constraint:OnDelete:CASCADE" json:"feature,omitempty"`
	Character *Character `gorm:"foreignKey:CharacterID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Ability
func (Ability) TableName(namer schema.Namer) string {
	return namer.TableName("ability")
}

// TableName returns the table name for Feature
func (Feature) TableName(namer schema.Namer) string {
	return namer.TableName("feature")
}

// TableName returns the table name for AbilityAvailable
func (AbilityAvailable) TableName(namer schema.Namer) string {
	return namer.TableName("abilityAvailable")
}

// TableName returns the table name for FeatureAvailable
func (FeatureAvailable) TableName(namer schema.Namer) string {
	return namer.TableName("featureAvailable")
}

// TableName returns the table name for CharacterAbility
func (CharacterAbility) TableName(namer schema.Namer) string {
	return namer.TableName("characterAbilities")
}

// TableName returns the table name for CharacterFeature
func (CharacterFeature) TableName(namer schema.Namer) string {
	return namer.TableName("characterFeatures")
}
