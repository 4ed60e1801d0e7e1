// Package models declares the relational schema of the application as GORM models.
//
// Every model resolves its table name through the schema.Namer of the
// connection, so a single prefix isolates this project's tables from other
// projects sharing the same database.
package models

// All returns every model, parents before children
func All() []interface{} {
	return []interface{}{
		&User{},
		&Account{},
		&Session{},
		&VerificationToken{},
		&Post{},
		&Faction{},
		&Clan{},
		&ClanInFaction{},
		&Ability{},
		&Feature{},
		&AbilityAvailable{},
		&FeatureAvailable{},
		&Character{},
		&CharacterAbility{},
		&CharacterFeature{},
		&HuntingGround{},
		&HuntingData{},
		&HuntingInstance{},
		&HuntingDescription{},
		&Hunt{},
		&Rule{},
		&Product{},
		&ProductImage{},
	}
}
