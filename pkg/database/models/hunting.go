package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// HuntStatus is the outcome of a Hunt
type HuntStatus string

const (
	HuntSuccess     HuntStatus = "success"
	HuntExpFailure  HuntStatus = "exp_failure"
	HuntReqFailure  HuntStatus = "req_failure"
	HuntMasqFailure HuntStatus = "masq_failure"
)

// ErrInvalidHuntStatus is returned when a Hunt carries a status outside the known set
var ErrInvalidHuntStatus = errors.New("invalid hunt status")

// HuntStatuses lists every accepted hunt status
func HuntStatuses() []HuntStatus {
	return []HuntStatus{HuntSuccess, HuntExpFailure, HuntReqFailure, HuntMasqFailure}
}

// Valid reports whether s is one of the accepted statuses
func (s HuntStatus) Valid() bool {
	switch s {
	case HuntSuccess, HuntExpFailure, HuntReqFailure, HuntMasqFailure:
		return true
	}
	return false
}

// ParseHuntStatus converts a raw string into a HuntStatus
func ParseHuntStatus(raw string) (HuntStatus, error) {
	s := HuntStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidHuntStatus, raw)
	}
	return s, nil
}

// HuntingGround is a geographic zone that spawns HuntingInstances
type HuntingGround struct {
	ID        int        `gorm:"column:id;primaryKey;size:32" json:"id"`
	Name      string     `gorm:"column:name;size:256" json:"name"`
	Radius    *int       `gorm:"column:radius;size:32" json:"radius"` // metres
	MaxInst   *int       `gorm:"column:max_inst;size:32" json:"max_inst"`
	MinInst   *int       `gorm:"column:min_inst;size:32;default:0" json:"min_inst"`
	Delay     *int       `gorm:"column:delay;size:32;default:3600" json:"delay"` // seconds
	CoordY    *float64   `gorm:"column:coordY;type:double precision" json:"coordY"`
	CoordX    *float64   `gorm:"column:coordX;type:double precision" json:"coordX"`
	CreatedAt time.Time  `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt *time.Time `gorm:"column:updatedAt" json:"updatedAt"`
	Content   string     `gorm:"column:content;type:text" json:"content"`

	// Relationships
	Instances []HuntingInstance `gorm:"foreignKey:GroundID;constraint:OnDelete:SET NULL" json:"instances,omitempty"`
}

// HuntingData is a huntable target template
type HuntingData struct {
	ID      int    `gorm:"column:id;primaryKey;size:32" json:"id"`
	Name    string `gorm:"column:name;size:256" json:"name"`
	Image   string `gorm:"column:image;size:255" json:"image"`
	HuntReq string `gorm:"column:hunt_req;size:255" json:"hunt_req"`

	// Relationships
	Descriptions []HuntingDescription `gorm:"foreignKey:TargetID;constraint:OnDelete:CASCADE" json:"descs,omitempty"`
	Instances    []HuntingInstance    `gorm:"foreignKey:TargetID;constraint:OnDelete:CASCADE" json:"instances,omitempty"`
}

// HuntingInstance is a spawn of a HuntingData target at a location
type HuntingInstance struct {
	ID        int        `gorm:"column:id;primaryKey;size:32" json:"id"`
	Remains   *int       `gorm:"column:remains;size:32" json:"remains"`
	CoordY    *float64   `gorm:"column:coordY;type:double precision" json:"coordY"`
	CoordX    *float64   `gorm:"column:coordX;type:double precision" json:"coordX"`
	Temporary bool       `gorm:"column:temporary" json:"temporary"`
	Expires   *time.Time `gorm:"column:expires" json:"expires"`
	CreatedAt time.Time  `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt *time.Time `gorm:"column:updatedAt" json:"updatedAt"`
	TargetID  int        `gorm:"column:targetId;size:32;not null" json:"targetId"`
	GroundID  *int       `gorm:"column:groundId;size:32" json:"groundId"`

	Target *HuntingData   `gorm:"foreignKey:TargetID;constraint:OnDelete:CASCADE" json:"target,omitempty"`
	Ground *HuntingGround `gorm:"foreignKey:GroundID;constraint:OnDelete:SET NULL" json:"ground,omitempty"`
	Hunts  []Hunt         `gorm:"foreignKey:InstanceID;constraint:OnDelete:SET NULL" json:"hunts,omitempty"`
}

// BeforeSave stores the expiry in UTC
func (i *HuntingInstance) BeforeSave(tx *gorm.DB) error {
	if i.Expires != nil {
		expires := i.Expires.UTC()
		i.Expires = &expires
	}
	return nil
}

// Live reports whether the instance has not expired at now
func (i *HuntingInstance) Live(now time.Time) bool {
	return i.Expires == nil || i.Expires.After(now)
}

// HuntingDescription is a narrative variant of a target keyed by remains
type HuntingDescription struct {
	ID       int    `gorm:"column:id;primaryKey;size:32" json:"id"`
	TargetID int    `gorm:"column:targetId;size:32;not null" json:"targetId"`
	Remains  *int   `gorm:"column:remains;size:32" json:"remains"`
	Content  string `gorm:"column:content;type:text" json:"content"`

	Target *HuntingData `gorm:"foreignKey:TargetID;constraint:OnDelete:CASCADE" json:"-"`
}

// Hunt records a Character hunting, optionally at a HuntingInstance
type Hunt struct {
	ID          int        `gorm:"column:id;primaryKey;size:32" json:"id"`
	InstanceID  *int       `gorm:"column:instanceId;size:32" json:"instanceId"`
	CharacterID int        `gorm:"column:characterId;size:32;not null" json:"characterId"`
	CreatedByID string     `gorm:"column:createdById;size:255;not null" json:"createdById"`
	Status      HuntStatus `gorm:"column:status;size:255;not null;check:hunt_status_check,status IN ('success','exp_failure','req_failure','masq_failure')" json:"status"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   *time.Time `gorm:"column:updatedAt" json:"updatedAt"`

	Instance  *HuntingInstance `gorm:"foreignKey:InstanceID;constraint:OnDelete:SET NULL" json:"instance,omitempty"`
	Character *Character       `gorm:"foreignKey:CharacterID;constraint:OnDelete:CASCADE" json:"character,omitempty"`
	CreatedBy *User            `gorm:"foreignKey:CreatedByID;constraint:OnDelete:RESTRICT" json:"createdBy,omitempty"`
}

// BeforeSave rejects unknown statuses before they reach the database
func (h *Hunt) BeforeSave(tx *gorm.DB) error {
	if !h.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidHuntStatus, h.Status)
	}
	return nil
}

// TableName returns the table name for HuntingGround
func (HuntingGround) TableName(namer schema.Namer) string {
	return namer.TableName("huntingGround")
}

// TableName returns the table name for HuntingData
func (HuntingData) TableName(namer schema.Namer) string {
	return namer.TableName("huntingData")
}

// TableName returns the table name for HuntingInstance
func (HuntingInstance) TableName(namer schema.Namer) string {
	return namer.TableName("huntingInstance")
}

// TableName returns the table name for HuntingDescription
func (HuntingDescription) TableName(namer schema.Namer) string {
	return namer.TableName("huntingDescription")
}

// TableName returns the table name for Hunt
func (Hunt) TableName(namer schema.Namer) string {
	return namer.TableName("hunt")
}
