package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/bths-repair/bths-repair-the-world/core/event"
)

type eventRepository struct {
	db *sqlx.DB
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *sqlx.DB) *eventRepository {
	return &eventRepository{db: db}
}

func (repo eventRepository) trapNoRowsErr(err error, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo eventRepository) CreateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	ev.ID = uuid.New().String()
	query := `
		INSERT INTO events (
			id, name, description, address, image_url, event_time,
			max_hours, max_points, created_at, updated_at
		) VALUES (
			:id, :name, :description, :address, :image_url, :event_time,
			:max_hours, :max_points, :created_at, :updated_at
		)`
	if _, err := repo.db.NamedExecContext(ctx, query, ev); err != nil {
		return event.Event{}, errors.Wrap(err, "inserting event")
	}
	return ev, nil
}

func (repo eventRepository) QueryAllEvents(ctx context.Context) ([]event.Event, error) {
	var evs []event.Event
	if err := repo.db.SelectContext(ctx, &evs, `SELECT * FROM events ORDER BY event_time DESC`); err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	return evs, nil
}

func (repo eventRepository) GetEventByID(ctx context.Context, id string) (event.Event, error) {
	var ev event.Event
	if err := repo.db.GetContext(ctx, &ev, `SELECT * FROM events WHERE id = $1`, id); err != nil {
		return event.Event{}, repo.trapNoRowsErr(err, event.ErrNotFound, "getting event by id")
	}
	return ev, nil
}

func (repo eventRepository) UpdateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	query := `
		UPDATE events SET
			name = :name, description = :description, address = :address,
			image_url = :image_url, event_time = :event_time,
			max_hours = :max_hours, max_points = :max_points, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, ev)
	if err != nil {
		return event.Event{}, errors.Wrap(err, "updating event")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return event.Event{}, event.ErrNotFound
	}
	return ev, nil
}

func (repo eventRepository) DeleteEvent(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting event")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return event.ErrNotFound
	}
	return nil
}

func (repo eventRepository) CreateAttendance(ctx context.Context, att event.Attendance) (event.Attendance, error) {
	query := `
		INSERT INTO event_attendance (
			event_id, user_email, joined_at, attended_at, earned_hours, earned_points
		) VALUES (
			:event_id, :user_email, :joined_at, :attended_at, :earned_hours, :earned_points
		)`
	if _, err := repo.db.NamedExecContext(ctx, query, att); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return event.Attendance{}, event.ErrAlreadyJoined
		}
		return event.Attendance{}, errors.Wrap(err, "inserting attendance")
	}
	return att, nil
}

func (repo eventRepository) GetAttendance(ctx context.Context, eventID, email string) (event.Attendance, error) {
	var att event.Attendance
	query := `SELECT * FROM event_attendance WHERE event_id = $1 AND user_email = $2`
	if err := repo.db.GetContext(ctx, &att, query, eventID, email); err != nil {
		return event.Attendance{}, repo.trapNoRowsErr(err, event.ErrAttendanceNotFound, "getting attendance")
	}
	return att, nil
}

func (repo eventRepository) QueryEventAttendance(ctx context.Context, eventID string) ([]event.Attendance, error) {
	var atts []event.Attendance
	query := `SELECT * FROM event_attendance WHERE event_id = $1 ORDER BY joined_at`
	if err := repo.db.SelectContext(ctx, &atts, query, eventID); err != nil {
		return nil, errors.Wrap(err, "querying event attendance")
	}
	return atts, nil
}

func (repo eventRepository) UpdateAttendance(ctx context.Context, att event.Attendance) (event.Attendance, error) {
	query := `
		UPDATE event_attendance SET
			attended_at = :attended_at, earned_hours = :earned_hours, earned_points = :earned_points
		WHERE event_id = :event_id AND user_email = :user_email`
	res, err := repo.db.NamedExecContext(ctx, query, att)
	if err != nil {
		return event.Attendance{}, errors.Wrap(err, "updating attendance")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return event.Attendance{}, event.ErrAttendanceNotFound
	}
	return att, nil
}

func (repo eventRepository) DeleteAttendance(ctx context.Context, eventID, email string) error {
	query := `DELETE FROM event_attendance WHERE event_id = $1 AND user_email = $2`
	res, err := repo.db.ExecContext(ctx, query, eventID, email)
	if err != nil {
		return errors.Wrap(err, "deleting attendance")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return event.ErrAttendanceNotFound
	}
	return nil
}
