package event

import (
	"time"

	"github.com/bths-repair/bths-repair-the-world/core"
)

// Event is a volunteering opportunity members can join for hours/points.
type Event struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"` // markdown
	Address     string    `json:"address" db:"address"`
	ImageURL    string    `json:"imageURL,omitempty" db:"image_url"`
	EventTime   time.Time `json:"eventTime" db:"event_time"`
	MaxHours    float64   `json:"maxHours" db:"max_hours"`
	MaxPoints   float64   `json:"maxPoints" db:"max_points"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"` // UTC
}

// HasPassed reports whether the event already happened at time t.
// Joining and leaving are frozen from then on.
func (ev *Event) HasPassed(t time.Time) bool {
	return ev.EventTime.Before(t)
}

// Attendance tracks one member's participation in one event.
// Identified by the (event, email) pair; hours/points stay zero until
// staff confirms attendance.
type Attendance struct {
	EventID      string     `json:"eventId" db:"event_id"`
	UserEmail    string     `json:"userEmail" db:"user_email"`
	JoinedAt     time.Time  `json:"joinedAt" db:"joined_at"` // UTC
	AttendedAt   *time.Time `json:"attendedAt" db:"attended_at"`
	EarnedHours  float64    `json:"earnedHours" db:"earned_hours"`
	EarnedPoints float64    `json:"earnedPoints" db:"earned_points"`
}

func (a *Attendance) Attended() bool { return a.AttendedAt != nil }

// WriteEvent contains the information needed to create or edit an Event.
type WriteEvent struct {
	Name        string    `json:"name" validate:"required,max=190"`
	Description string    `json:"description" validate:"omitempty"`
	Address     string    `json:"address" validate:"required,max=190"`
	ImageURL    string    `json:"imageURL" validate:"omitempty,url"`
	EventTime   time.Time `json:"eventTime" validate:"required"`
	MaxHours    float64   `json:"maxHours" validate:"min=0"`
	MaxPoints   float64   `json:"maxPoints" validate:"min=0"`
}

func (we *WriteEvent) Validate() error {
	we.Name = core.CleanString(we.Name)
	we.Address = core.CleanString(we.Address)
	we.ImageURL = core.CleanString(we.ImageURL)
	return core.Validate.Struct(we)
}

// MarkAttendance is the staff payload confirming a member showed up.
// Omitted hours/points default to the event's caps.
type MarkAttendance struct {
	EarnedHours  *float64 `json:"earnedHours" validate:"omitempty,min=0"`
	EarnedPoints *float64 `json:"earnedPoints" validate:"omitempty,min=0"`
}

func (ma *MarkAttendance) Validate() error {
	return core.Validate.Struct(ma)
}
