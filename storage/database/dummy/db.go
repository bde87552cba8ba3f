package dummydb

import (
	"sync"

	"github.com/bths-repair/bths-repair-the-world/core/event"
	"github.com/bths-repair/bths-repair-the-world/core/user"
)

type (
	DB struct {
		user  *userTable
		event *eventTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User // email -> user
	}

	attendanceKey struct {
		eventID string
		email   string
	}

	eventTable struct {
		sync.RWMutex
		table      map[string]*event.Event // id -> event
		attendance map[attendanceKey]*event.Attendance
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		event: &eventTable{
			table:      make(map[string]*event.Event),
			attendance: make(map[attendanceKey]*event.Attendance),
		},
	}
	return db, nil
}
