package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/bths-repair/bths-repair-the-world/core/event"
)

type eventRepository struct {
	db *eventTable
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *DB) *eventRepository {
	return &eventRepository{db: db.event}
}

func (repo *eventRepository) CreateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ev.ID = uuid.New().String()
	repo.db.table[ev.ID] = &ev
	return ev, nil
}

func (repo *eventRepository) QueryAllEvents(ctx context.Context) ([]event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	evs := make([]event.Event, 0, len(repo.db.table))
	for _, ev := range repo.db.table {
		evs = append(evs, *ev)
	}
	sort.Slice(evs, func(i, j int) bool { return evs[i].EventTime.After(evs[j].EventTime) })
	return evs, nil
}

func (repo *eventRepository) GetEventByID(ctx context.Context, id string) (event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ev, ok := repo.db.table[id]; ok {
		return *ev, nil
	}
	return event.Event{}, event.ErrNotFound
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[ev.ID]; !ok {
		return event.Event{}, event.ErrNotFound
	}
	repo.db.table[ev.ID] = &ev
	return ev, nil
}

func (repo *eventRepository) DeleteEvent(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return event.ErrNotFound
	}
	delete(repo.db.table, id)
	for key := range repo.db.attendance {
		if key.eventID == id {
			delete(repo.db.attendance, key)
		}
	}
	return nil
}

func (repo *eventRepository) CreateAttendance(ctx context.Context, att event.Attendance) (event.Attendance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := attendanceKey{eventID: att.EventID, email: att.UserEmail}
	if _, ok := repo.db.attendance[key]; ok {
		return event.Attendance{}, event.ErrAlreadyJoined
	}
	repo.db.attendance[key] = &att
	return att, nil
}

func (repo *eventRepository) GetAttendance(ctx context.Context, eventID, email string) (event.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if att, ok := repo.db.attendance[attendanceKey{eventID: eventID, email: email}]; ok {
		return *att, nil
	}
	return event.Attendance{}, event.ErrAttendanceNotFound
}

func (repo *eventRepository) QueryEventAttendance(ctx context.Context, eventID string) ([]event.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var atts []event.Attendance
	for key, att := range repo.db.attendance {
		if key.eventID == eventID {
			atts = append(atts, *att)
		}
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].JoinedAt.Before(atts[j].JoinedAt) })
	return atts, nil
}

func (repo *eventRepository) UpdateAttendance(ctx context.Context, att event.Attendance) (event.Attendance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := attendanceKey{eventID: att.EventID, email: att.UserEmail}
	if _, ok := repo.db.attendance[key]; !ok {
		return event.Attendance{}, event.ErrAttendanceNotFound
	}
	repo.db.attendance[key] = &att
	return att, nil
}

func (repo *eventRepository) DeleteAttendance(ctx context.Context, eventID, email string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := attendanceKey{eventID: eventID, email: email}
	if _, ok := repo.db.attendance[key]; !ok {
		return event.ErrAttendanceNotFound
	}
	delete(repo.db.attendance, key)
	return nil
}
