package core

import (
	"context"
	"time"
)

// AttendanceUpdate is the payload pushed on an event's real-time channel
// whenever an attendance record changes. Subscribers filter by UserEmail
// client-side; the channel is an invalidation hint, not a security boundary.
type AttendanceUpdate struct {
	EventID      string     `json:"eventId"`
	UserEmail    string     `json:"userEmail"`
	JoinedAt     time.Time  `json:"joinedAt"`
	AttendedAt   *time.Time `json:"attendedAt"`
	EarnedHours  float64    `json:"earnedHours"`
	EarnedPoints float64    `json:"earnedPoints"`
	Left         bool       `json:"left,omitempty"`
}

// Broadcaster is any service that can push attendance updates to
// subscribed clients. Delivery is best-effort and unordered.
type Broadcaster interface {
	BroadcastAttendance(ctx context.Context, update AttendanceUpdate) error
}
