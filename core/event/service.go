package event

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/bths-repair/bths-repair-the-world/core"
)

var (
	// errors
	ErrNotFound           = errors.New("event not found")
	ErrAttendanceNotFound = errors.New("attendance not found")
	ErrEventPassed        = errors.New("event already happened")
	ErrAlreadyJoined      = errors.New("event already joined")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateEvent(ctx context.Context, ev Event) (Event, error)
		QueryAllEvents(ctx context.Context) ([]Event, error)
		GetEventByID(ctx context.Context, id string) (Event, error)
		UpdateEvent(ctx context.Context, ev Event) (Event, error)
		DeleteEvent(ctx context.Context, id string) error

		// CreateAttendance fails with ErrAlreadyJoined on a duplicate
		// (event, email) pair; concurrent double joins resolve through the
		// store's uniqueness constraint, never as duplicate rows.
		CreateAttendance(ctx context.Context, att Attendance) (Attendance, error)
		GetAttendance(ctx context.Context, eventID, email string) (Attendance, error)
		QueryEventAttendance(ctx context.Context, eventID string) ([]Attendance, error)
		UpdateAttendance(ctx context.Context, att Attendance) (Attendance, error)
		DeleteAttendance(ctx context.Context, eventID, email string) error
	}

	Service struct {
		repo        Repository
		broadcaster core.Broadcaster
		logger      core.Logger
	}
)

func NewService(repo Repository, broadcaster core.Broadcaster, logger core.Logger) *Service {
	return &Service{repo: repo, broadcaster: broadcaster, logger: logger}
}

func (svc *Service) Create(ctx context.Context, we WriteEvent) (Event, error) {
	now := time.Now().UTC()
	ev := Event{
		Name:        we.Name,
		Description: we.Description,
		Address:     we.Address,
		ImageURL:    we.ImageURL,
		EventTime:   we.EventTime,
		MaxHours:    we.MaxHours,
		MaxPoints:   we.MaxPoints,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateEvent(ctx, ev)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Event, error) {
	return svc.repo.QueryAllEvents(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Event, error) {
	return svc.repo.GetEventByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, we WriteEvent) (Event, error) {
	ev, err := svc.repo.GetEventByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	ev.Name = we.Name
	ev.Description = we.Description
	ev.Address = we.Address
	ev.ImageURL = we.ImageURL
	ev.EventTime = we.EventTime
	ev.MaxHours = we.MaxHours
	ev.MaxPoints = we.MaxPoints
	ev.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEvent(ctx, ev)
}

// Delete removes an event irreversibly; attendance records go with it.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteEvent(ctx, id)
}

// Join creates an attendance record for email on an upcoming event.
// NotJoined -> Joined; rejected once the event has happened.
func (svc *Service) Join(ctx context.Context, eventID, email string) (Attendance, error) {
	ev, err := svc.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return Attendance{}, err
	}
	if ev.HasPassed(NowFunc()) {
		return Attendance{}, ErrEventPassed
	}

	att := Attendance{
		EventID:   ev.ID,
		UserEmail: email,
		JoinedAt:  time.Now().UTC(),
	}
	att, err = svc.repo.CreateAttendance(ctx, att)
	if err != nil {
		return Attendance{}, err
	}
	svc.broadcast(ctx, att, false)
	return att, nil
}

// Leave deletes the attendance record. Joined -> NotJoined; same time
// gate as Join, regardless of caller role.
func (svc *Service) Leave(ctx context.Context, eventID, email string) error {
	ev, err := svc.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return err
	}
	if ev.HasPassed(NowFunc()) {
		return ErrEventPassed
	}

	att, err := svc.repo.GetAttendance(ctx, eventID, email)
	if err != nil {
		return err
	}
	if err := svc.repo.DeleteAttendance(ctx, eventID, email); err != nil {
		return err
	}
	svc.broadcast(ctx, att, true)
	return nil
}

func (svc *Service) GetAttendance(ctx context.Context, eventID, email string) (Attendance, error) {
	return svc.repo.GetAttendance(ctx, eventID, email)
}

func (svc *Service) QueryAttendance(ctx context.Context, eventID string) ([]Attendance, error) {
	return svc.repo.QueryEventAttendance(ctx, eventID)
}

// MarkAttended confirms a member showed up: Joined -> Attended. Awards
// are clamped to the event's caps and default to them when omitted.
// AttendedAt is set once; re-marking only adjusts the awards.
func (svc *Service) MarkAttended(ctx context.Context, eventID, email string, ma MarkAttendance) (Attendance, error) {
	ev, err := svc.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return Attendance{}, err
	}
	att, err := svc.repo.GetAttendance(ctx, eventID, email)
	if err != nil {
		return Attendance{}, err
	}

	if att.AttendedAt == nil {
		now := time.Now().UTC()
		att.AttendedAt = &now
	}
	att.EarnedHours = clamp(ma.EarnedHours, ev.MaxHours)
	att.EarnedPoints = clamp(ma.EarnedPoints, ev.MaxPoints)

	att, err = svc.repo.UpdateAttendance(ctx, att)
	if err != nil {
		return Attendance{}, err
	}
	svc.broadcast(ctx, att, false)
	return att, nil
}

func clamp(val *float64, max float64) float64 {
	if val == nil || *val > max {
		return max
	}
	return *val
}

// broadcast pushes the change on the event's channel. Best-effort: a
// failed publish is logged, never surfaced to the caller.
func (svc *Service) broadcast(ctx context.Context, att Attendance, left bool) {
	upd := core.AttendanceUpdate{
		EventID:      att.EventID,
		UserEmail:    att.UserEmail,
		JoinedAt:     att.JoinedAt,
		AttendedAt:   att.AttendedAt,
		EarnedHours:  att.EarnedHours,
		EarnedPoints: att.EarnedPoints,
		Left:         left,
	}
	if err := svc.broadcaster.BroadcastAttendance(ctx, upd); err != nil {
		svc.logger.Warn("broadcasting attendance update", errors.Wrap(err, "broadcasting attendance update"))
	}
}
