package user

import (
	"time"

	"github.com/bths-repair/bths-repair-the-world/core"
)

// Position is a member's role within the club.
type Position string

const (
	PositionMember Position = "member"
	PositionExec   Position = "exec"
	PositionAdmin  Position = "admin"
)

var Positions = []Position{PositionMember, PositionExec, PositionAdmin}

func (p Position) Valid() bool {
	switch p {
	case PositionMember, PositionExec, PositionAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the position grants moderation capabilities:
// event lifecycle, attendance rosters and other members' profiles.
func (p Position) IsStaff() bool {
	return p == PositionAdmin || p == PositionExec
}

// User is a registered club member, identified by email.
type User struct {
	Email         string    `json:"email" db:"email"`
	Name          string    `json:"name" db:"name"`
	PreferredName string    `json:"preferredName" db:"preferred_name"`
	Pronouns      string    `json:"pronouns" db:"pronouns"`
	GradYear      int       `json:"gradYear" db:"grad_year"`
	Prefect       string    `json:"prefect" db:"prefect"`
	Birthday      string    `json:"birthday,omitempty" db:"birthday"`
	Position      Position  `json:"position" db:"position"`
	EmailVerified bool      `json:"emailVerified" db:"email_verified"`
	ReferredBy    string    `json:"referredBy,omitempty" db:"referred_by"`
	SgoSticker    bool      `json:"sgoSticker" db:"sgo_sticker"`
	EventAlerts   bool      `json:"eventAlerts" db:"event_alerts"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"` // UTC
	LastUpdated   time.Time `json:"lastUpdated" db:"last_updated"` // UTC
}

func (u *User) IsStaff() bool { return u.Position.IsStaff() }

// Profile is a User plus their computed referral list: the emails of
// members who named this user as their referrer. The list is derived on
// every read, never stored.
type Profile struct {
	User
	Referrals []string `json:"referrals"`
}

// WriteUser contains the information needed to create or replace a profile.
// The same schema applies to both operations.
type WriteUser struct {
	Name          string `json:"name" validate:"required,max=190"`
	PreferredName string `json:"preferredName" validate:"omitempty,max=190"`
	Pronouns      string `json:"pronouns" validate:"required,max=190"`
	GradYear      int    `json:"gradYear" validate:"required,min=2024,max=2027"`
	Prefect       string `json:"prefect" validate:"required,prefect"`
	Birthday      string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	ReferredBy    string `json:"referredBy" validate:"omitempty,email,schoolemail"`
	SgoSticker    *bool  `json:"sgoSticker" validate:"required"`
	EventAlerts   *bool  `json:"eventAlerts" validate:"required"`
}

func (wu *WriteUser) Validate() error {
	wu.Name = core.CleanString(wu.Name)
	wu.PreferredName = core.CleanString(wu.PreferredName)
	wu.Pronouns = core.CleanString(wu.Pronouns)
	wu.Prefect = core.CleanString(wu.Prefect)
	wu.ReferredBy = core.CleanString(wu.ReferredBy, true /* lower */)
	if wu.PreferredName == "" {
		wu.PreferredName = wu.Name
	}
	return core.Validate.Struct(wu)
}
