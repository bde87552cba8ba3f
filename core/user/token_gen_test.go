package user

import (
	"testing"
	"time"

	"github.com/bths-repair/bths-repair-the-world/core"
)

func TestMakeVerifyToken(t *testing.T) {
	email := "t@nycstudents.net"

	validToken, err := MakeToken(email)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}

	// generate an expired token
	dayLate := core.Conf.VerifyEmailTimeoutDelta + (24 * time.Hour)
	NowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken, err := MakeToken(email)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}
	NowFunc = time.Now // reset

	tests := []struct {
		name    string
		email   string
		token   string
		wantErr error
	}{
		{name: "no token", email: email, wantErr: errInvalidToken},
		{name: "invalid parts len", email: email, token: "lmaooolol", wantErr: errInvalidToken},
		{name: "invalid base32", email: email, token: "hahaha-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid timestamp", email: email, token: "NRXWY-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid token", email: email, token: "HE4TS-sigsig-sig", wantErr: errInvalidToken},
		{name: "wrong email", email: "other@nycstudents.net", token: validToken, wantErr: errInvalidToken},
		{name: "expired token", email: email, token: expiredToken, wantErr: errTokenExpired},
		{name: "valid token", email: email, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := verifyToken(tt.email, tt.token); err != tt.wantErr {
				t.Errorf("verifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
