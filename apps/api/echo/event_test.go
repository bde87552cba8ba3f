package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/bths-repair/bths-repair-the-world/core/event"
	"github.com/bths-repair/bths-repair-the-world/core/user"
)

func fPtr(f float64) *float64 { return &f }

func writeEventBody(t *testing.T, name string, eventTime time.Time) []byte {
	return marchallObj(t, event.WriteEvent{
		Name:      name,
		Address:   "29 Fort Greene Pl, Brooklyn, NY",
		EventTime: eventTime,
		MaxHours:  2,
		MaxPoints: 10,
	})
}

func Test_eventApi_lifecycle(t *testing.T) {
	app := setup(t)

	exec := createUser(t, "exec@nycstudents.net", "Exec Utive", user.PositionExec, true, "")
	member := createUser(t, "awe@nycstudents.net", "Awe Some", user.PositionMember, true, "")
	execToken := getToken(t, exec)

	nextWeek := time.Now().UTC().Add(7 * 24 * time.Hour).Truncate(time.Second)
	park := createEvent(t, "Park Cleanup", nextWeek, 2, 10)
	drive := createEvent(t, "Food Drive", nextWeek.Add(time.Hour), 3, 15)

	tests := []httpTest{
		{
			name: "List is public", method: http.MethodGet, path: "/v1/events",
			wantCode: http.StatusOK, wantData: marchallList(t, drive, park),
		},
		{
			name: "Detail is public", method: http.MethodGet, path: "/v1/events/" + park.ID,
			wantCode: http.StatusOK, wantData: marchallObj(t, park),
		},
		{
			name: "Detail unknown", method: http.MethodGet, path: "/v1/events/lol",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "Create requires auth", method: http.MethodPost, path: "/v1/events",
			body: writeEventBody(t, "Bake Sale", nextWeek), wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Create requires staff", method: http.MethodPost, path: "/v1/events", token: getToken(t, member),
			body: writeEventBody(t, "Bake Sale", nextWeek), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Create validates payload", method: http.MethodPost, path: "/v1/events", token: execToken,
			body:     marchallObj(t, map[string]interface{}{"eventTime": nextWeek}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required", "address": "this field is required"}),
		},
		{
			// the frontend only treats a plain 200 as success
			name: "Create", method: http.MethodPost, path: "/v1/events", token: execToken,
			body: writeEventBody(t, "Bake Sale", nextWeek), wantCode: http.StatusOK,
		},
		{
			name: "Update requires staff", method: http.MethodPut, path: "/v1/events/" + park.ID, token: getToken(t, member),
			body: writeEventBody(t, "Park Cleanup II", nextWeek), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Update", method: http.MethodPut, path: "/v1/events/" + park.ID, token: execToken,
			body: writeEventBody(t, "Park Cleanup II", nextWeek), wantCode: http.StatusOK,
		},
		{
			name: "Update unknown", method: http.MethodPut, path: "/v1/events/lol", token: execToken,
			body: writeEventBody(t, "Ghost Event", nextWeek), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "Delete requires staff", method: http.MethodDelete, path: "/v1/events/" + drive.ID, token: getToken(t, member),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Delete", method: http.MethodDelete, path: "/v1/events/" + drive.ID, token: execToken,
			wantCode: http.StatusOK, wantData: []byte("null"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	ctx := context.Background()

	refreshed, err := evtRepo.GetEventByID(ctx, park.ID)
	if err != nil {
		t.Fatalf("GetEventByID() failed: %v", err)
	}
	if refreshed.Name != "Park Cleanup II" {
		t.Errorf("name = %q; want %q", refreshed.Name, "Park Cleanup II")
	}
	if !refreshed.UpdatedAt.After(park.UpdatedAt) {
		t.Errorf("updatedAt was not stamped: %v", refreshed.UpdatedAt)
	}

	if _, err = evtRepo.GetEventByID(ctx, drive.ID); err != event.ErrNotFound {
		t.Errorf("deleted event still present; err = %v", err)
	}
}

func Test_eventApi_attendance(t *testing.T) {
	app := setup(t)

	exec := createUser(t, "exec@nycstudents.net", "Exec Utive", user.PositionExec, true, "")
	member := createUser(t, "awe@nycstudents.net", "Awe Some", user.PositionMember, true, "")
	memberToken := getToken(t, member)
	execToken := getToken(t, exec)

	now := time.Now().UTC().Truncate(time.Second)
	upcoming := createEvent(t, "Park Cleanup", now.Add(24*time.Hour), 2, 10)
	past := createEvent(t, "Old Food Drive", now.Add(-24*time.Hour), 3, 15)
	pastAtt := joinEvent(t, past, member)

	attPath := func(ev event.Event, suffix string) string {
		return "/v1/events/" + ev.ID + "/attendance" + suffix
	}
	eventPassed := marchallObj(t, httpErr{Error: event.ErrEventPassed.Error()})

	tests := []httpTest{
		{
			name: "Attendance requires auth", method: http.MethodGet, path: attPath(upcoming, "/@me"),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Not joined is null", method: http.MethodGet, path: attPath(upcoming, "/@me"), token: memberToken,
			wantCode: http.StatusOK, wantData: []byte("null"),
		},
		{
			name: "Join unknown event", method: http.MethodPost, path: "/v1/events/lol/attendance/@me", token: memberToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "Cannot join a past event", method: http.MethodPost, path: attPath(past, "/@me"), token: execToken,
			wantCode: http.StatusBadRequest, wantData: eventPassed,
		},
		{
			// join/leave success must be a plain 200: the frontend gates on it
			name: "Join", method: http.MethodPost, path: attPath(upcoming, "/@me"), token: memberToken,
			wantCode: http.StatusOK,
		},
		{
			name: "Double join", method: http.MethodPost, path: attPath(upcoming, "/@me"), token: memberToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: event.ErrAlreadyJoined.Error()}),
		},
		{
			name: "Joined record", method: http.MethodGet, path: attPath(upcoming, "/@me"), token: memberToken,
			wantCode: http.StatusOK,
		},
		{
			name: "Cannot leave a past event", method: http.MethodDelete, path: attPath(past, "/@me"), token: memberToken,
			wantCode: http.StatusBadRequest, wantData: eventPassed,
		},
		{
			name: "Roster requires staff", method: http.MethodGet, path: attPath(upcoming, ""), token: memberToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Roster", method: http.MethodGet, path: attPath(upcoming, ""), token: execToken,
			wantCode: http.StatusOK,
		},
		{
			name: "Mark requires staff", method: http.MethodPut, path: attPath(past, "/"+member.Email), token: memberToken,
			body:     marchallObj(t, event.MarkAttendance{}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Mark not joined", method: http.MethodPut, path: attPath(past, "/"+exec.Email), token: execToken,
			body:     marchallObj(t, event.MarkAttendance{}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "Mark attended with clamped awards", method: http.MethodPut, path: attPath(past, "/"+member.Email), token: execToken,
			body:     marchallObj(t, event.MarkAttendance{EarnedHours: fPtr(100), EarnedPoints: fPtr(5)}),
			wantCode: http.StatusOK,
		},
		{
			name: "Leave", method: http.MethodDelete, path: attPath(upcoming, "/@me"), token: memberToken,
			wantCode: http.StatusOK, wantData: []byte("null"),
		},
		{
			name: "Leave when not joined", method: http.MethodDelete, path: attPath(upcoming, "/@me"), token: memberToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}

	ctx := context.Background()

	// awards are clamped to the event caps; attendedAt is stamped
	marked, err := evtRepo.GetAttendance(ctx, past.ID, member.Email)
	if err != nil {
		t.Fatalf("GetAttendance() failed: %v", err)
	}
	if marked.AttendedAt == nil {
		t.Error("attendedAt was not set")
	}
	if marked.EarnedHours != past.MaxHours {
		t.Errorf("earnedHours = %v; want clamped to %v", marked.EarnedHours, past.MaxHours)
	}
	if marked.EarnedPoints != 5 {
		t.Errorf("earnedPoints = %v; want %v", marked.EarnedPoints, 5.0)
	}
	if !marked.JoinedAt.Equal(pastAtt.JoinedAt) {
		t.Errorf("joinedAt changed on mark: %v", marked.JoinedAt)
	}

	// the member left the upcoming event
	if _, err = evtRepo.GetAttendance(ctx, upcoming.ID, member.Email); err != event.ErrAttendanceNotFound {
		t.Errorf("attendance still present after leave; err = %v", err)
	}

	// every mutation was broadcast on the event channel
	updates := broadcaster.all()
	if len(updates) != 3 { // join, mark, leave
		t.Fatalf("broadcast count = %d; want 3", len(updates))
	}
	join, mark, leave := updates[0], updates[1], updates[2]
	if join.EventID != upcoming.ID || join.UserEmail != member.Email || join.Left {
		t.Errorf("unexpected join update: %+v", join)
	}
	if mark.EventID != past.ID || mark.AttendedAt == nil || mark.EarnedHours != past.MaxHours {
		t.Errorf("unexpected mark update: %+v", mark)
	}
	if leave.EventID != upcoming.ID || !leave.Left {
		t.Errorf("unexpected leave update: %+v", leave)
	}
}

func Test_eventApi_joinResponse(t *testing.T) {
	app := setup(t)

	member := createUser(t, "awe@nycstudents.net", "Awe Some", user.PositionMember, true, "")
	upcoming := createEvent(t, "Park Cleanup", time.Now().UTC().Add(24*time.Hour), 2, 10)

	req, rec := newAuthRequest(http.MethodPost, "/v1/events/"+upcoming.ID+"/attendance/@me", getToken(t, member))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
	}

	var att event.Attendance
	if err := json.Unmarshal(rec.Body.Bytes(), &att); err != nil {
		t.Fatalf("unmarshaling body: %v", err)
	}
	if att.EventID != upcoming.ID || att.UserEmail != member.Email {
		t.Errorf("unexpected attendance: %+v", att)
	}
	if att.Attended() || att.EarnedHours != 0 || att.EarnedPoints != 0 {
		t.Error("hours/points must stay zero until attendance is confirmed")
	}
	if att.JoinedAt.IsZero() {
		t.Error("joinedAt was not set")
	}
}
