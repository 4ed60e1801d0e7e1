package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// AccountType is the kind of sign-in an Account row records
type AccountType string

const (
	AccountTypeOAuth       AccountType = "oauth"
	AccountTypeEmail       AccountType = "email"
	AccountTypeOIDC        AccountType = "oidc"
	AccountTypeCredentials AccountType = "credentials"
)

// User represents a site user in the database
type User struct {
	ID            string     `gorm:"column:id;primaryKey;size:255;not null" json:"id"`
	Name          string     `gorm:"column:name;size:255" json:"name"`
	Email         string     `gorm:"column:email;size:255;not null" json:"email"`
	EmailVerified *time.Time `gorm:"column:emailVerified;default:CURRENT_TIMESTAMP" json:"emailVerified"`
	Image         string     `gorm:"column:image;size:255" json:"image"`

	// Relationships
	Accounts   []Account   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Sessions   []Session   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Posts      []Post      `gorm:"foreignKey:CreatedByID;constraint:OnDelete:RESTRICT" json:"-"`
	Rules      []Rule      `gorm:"foreignKey:CreatedByID;constraint:OnDelete:RESTRICT" json:"-"`
	Characters []Character `gorm:"foreignKey:CreatedByID;constraint:OnDelete:RESTRICT" json:"-"`
	Hunts      []Hunt      `gorm:"foreignKey:CreatedByID;constraint:OnDelete:RESTRICT" json:"-"`
}

// BeforeCreate assigns a random id to users created without one
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Account links a User to an external sign-in provider
type Account struct {
	UserID            string      `gorm:"column:userId;size:255;not null;index:account_userId_idx" json:"userId"`
	Type              AccountType `gorm:"column:type;size:255;not null" json:"type"`
	Provider          string      `gorm:"column:provider;primaryKey;size:255;not null" json:"provider"`
	ProviderAccountID string      `gorm:"column:providerAccountId;primaryKey;size:255;not null" json:"providerAccountId"`
	RefreshToken      string      `gorm:"column:refresh_token;type:text" json:"refresh_token,omitempty"`
	AccessToken       string      `gorm:"column:access_token;type:text" json:"access_token,omitempty"`
	ExpiresAt         *int        `gorm:"column:expires_at;size:32" json:"expires_at,omitempty"`
	TokenType         string      `gorm:"column:token_type;size:255" json:"token_type,omitempty"`
	Scope             string      `gorm:"column:scope;size:255" json:"scope,omitempty"`
	IDToken           string      `gorm:"column:id_token;type:text" json:"id_token,omitempty"`
	SessionState      string      `gorm:"column:session_state;size:255" json:"session_state,omitempty"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Session is a database-backed sign-in session
type Session struct {
	SessionToken string    `gorm:"column:sessionToken;primaryKey;size:255;not null" json:"sessionToken"`
	UserID       string    `gorm:"column:userId;size:255;not null;index:session_userId_idx" json:"userId"`
	Expires      time.Time `gorm:"column:expires;not null" json:"expires"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// VerificationToken is a single-use token keyed by (identifier, token)
type VerificationToken struct {
	Identifier string    `gorm:"column:identifier;primaryKey;size:255;not null" json:"identifier"`
	Token      string    `gorm:"column:token;primaryKey;size:255;not null" json:"token"`
	Expires    time.Time `gorm:"column:expires;not null" json:"expires"`
}

// BeforeSave stores the expiry in UTC
func (s *Session) BeforeSave(tx *gorm.DB) error {
	s.Expires = s.Expires.UTC()
	return nil
}

// BeforeSave stores the expiry in UTC
func (v *VerificationToken) BeforeSave(tx *gorm.DB) error {
	v.Expires = v.Expires.UTC()
	return nil
}

// TableName returns the table name for User
func (User) TableName(namer schema.Namer) string {
	return namer.TableName("user")
}

// TableName returns the table name for Account
func (Account) TableName(namer schema.Namer) string {
	return namer.TableName("account")
}

// TableName returns the table name for Session
func (Session) TableName(namer schema.Namer) string {
	return namer.TableName("session")
}

// TableName returns the table name for VerificationToken
func (VerificationToken) TableName(namer schema.Namer) string {
	return namer.TableName("verificationToken")
}
