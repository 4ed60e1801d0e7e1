package models

import (
	"time"

	"gorm.io/gorm/schema"
)

// Character represents a player character in the database
type Character struct {
	ID                  int        `gorm:"column:id;primaryKey;size:32" json:"id"`
	Name                string     `gorm:"column:name;size:256" json:"name"`
	FactionID           *int       `gorm:"column:factionId;size:32" json:"factionId"`
	ClanID              *int       `gorm:"column:clanId;size:32" json:"clanId"`
	Visible             bool       `gorm:"column:visible;default:false" json:"visible"`
	AdditionalAbilities *int       `gorm:"column:additionalAbilities;size:32" json:"additionalAbilities"`
	PlayerID            string     `gorm:"column:playerId;size:255" json:"playerId"`
	PlayerName          string     `gorm:"column:playerName;size:255" json:"playerName"`
	PlayerContact       string     `gorm:"column:playerContact;size:255" json:"playerContact"`
	Image               string     `gorm:"column:image;size:255" json:"image"`
	Age                 string     `gorm:"column:age;size:255" json:"age"`
	Sire                string     `gorm:"column:sire;size:255" json:"sire"`
	Title               string     `gorm:"column:title;size:255" json:"title"`
	Status              string     `gorm:"column:status;size:255" json:"status"`
	Childer             string     `gorm:"column:childer;size:255" json:"childer"`
	HuntReq             string     `gorm:"column:hunt_req;size:255" json:"hunt_req"`
	Comment             string     `gorm:"column:comment;type:text" json:"comment"`
	PComment            string     `gorm:"column:p_comment;type:text" json:"p_comment"`
	Pending             bool       `gorm:"column:pending;default:false" json:"pending"`
	Verified            bool       `gorm:"column:verified;default:false" json:"verified"`
	Ambition            string     `gorm:"column:ambition;type:text" json:"ambition"`
	PublicInfo          string     `gorm:"column:publicIngo;type:text" json:"publicIngo"`
	Content             string     `gorm:"column:content;type:text" json:"content"`
	CreatedByID         string     `gorm:"column:createdById;size:255;not null" json:"createdById"`
	CreatedAt           time.Time  `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt           *time.Time `gorm:"column:updatedAt" json:"updatedAt"`

	// Relationships
	CreatedBy *User              `gorm:"foreignKey:CreatedByID;constraint:OnDelete:RESTRICT" json:"createdBy,omitempty"`
	Clan      *Clan              `gorm:"foreignKey:ClanID;constraint:OnDelete:SET NULL" json:"clan,omitempty"`
	Faction   *Faction           `gorm:"foreignKey:FactionID;constraint:OnDelete:SET NULL" json:"faction,omitempty"`
	Abilities []CharacterAbility `gorm:"foreignKey:CharacterID;constraint:OnDelete:CASCADE" json:"abilities,omitempty"`
	Features  []CharacterFeature `gorm:"foreignKey:CharacterID;constraint:OnDelete:CASCADE" json:"features,omitempty"`
	Hunts     []Hunt             `gorm:"foreignKey:CharacterID;constraint:OnDelete:CASCADE" json:"hunts,omitempty"`
}

// Faction groups clans and characters
type Faction struct {
	ID              int    `gorm:"column:id;primaryKey;size:32" json:"id"`
	Name            string `gorm:"column:name;size:256" json:"name"`
	Icon            string `gorm:"column:icon;size:255" json:"icon"`
	Content         string `gorm:"column:content;type:text" json:"content"`
	VisibleToPlayer bool   `gorm:"column:visibleToPlayer;default:false" json:"visibleToPlayer"`

	// Relationships
	Characters    []Character     `gorm:"foreignKey:FactionID;constraint:OnDelete:SET NULL" json:"-"`
	ClanInFaction []ClanInFaction `gorm:"foreignKey:FactionID;constraint:OnDelete:CASCADE" json:"clanInFaction,omitempty"`
}

// Clan groups characters and restricts which traits they may take
type Clan struct {
	ID              int    `gorm:"column:id;primaryKey;size:32" json:"id"`
	Name            string `gorm:"column:name;size:256" json:"name"`
	Content         string `gorm:"column:content;type:text" json:"content"`
	Icon            string `gorm:"column:icon;size:255" json:"icon"`
	VisibleToPlayer bool   `gorm:"column:visibleToPlayer;default:false" json:"visibleToPlayer"`

	// Relationships
	Characters       []Character        `gorm:"foreignKey:ClanID;constraint:OnDelete:SET NULL" json:"-"`
	ClanInFaction    []ClanInFaction    `gorm:"foreignKey:ClanID;constraint:OnDelete:CASCADE" json:"clanInFaction,omitempty"`
	AbilityAvailable []AbilityAvailable `gorm:"foreignKey:ClanID;constraint:OnDelete:CASCADE" json:"-"`
	FeatureAvailable []FeatureAvailable `gorm:"foreignKey:ClanID;constraint:OnDelete:CASCADE" json:"-"`
}

// ClanInFaction is the join row between Clan and Faction
type ClanInFaction struct {
	ID        int `gorm:"column:id;primaryKey;size:32" json:"id"`
	ClanID    int `gorm:"column:clanId;size:32;not null" json:"clanId"`
	FactionID int `gorm:"column:factionId;size:32;not null" json:"factionId"`

	Clan    *Clan    `gorm:"foreignKey:ClanID;constraint:OnDelete:CASCADE" json:"clan,omitempty"`
	Faction *Faction `gorm:"foreignKey:FactionID;constraint:OnDelete:CASCADE" json:"faction,omitempty"`
}

// TableName returns the table name for Character
func (Character) TableName(namer schema.Namer) string {
	return namer.TableName("character")
}

// TableName returns the table name for Faction
func (Faction) TableName(namer schema.Namer) string {
	return namer.TableName("faction")
}

// TableName returns the table name for Clan
func (Clan) TableName(namer schema.Namer) string {
	return namer.TableName("clan")
}

// TableName returns the table name for ClanInFaction
func (ClanInFaction) TableName(namer schema.Namer) string {
	return namer.TableName("clanInFaction")
}
