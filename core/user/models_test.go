package user_test

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/bths-repair/bths-repair-the-world/core"
	"github.com/bths-repair/bths-repair-the-world/core/user"
)

func TestWriteUser_Validate(t *testing.T) {
	valid := func() user.WriteUser { return newWriteUser("Awe Some") }

	tests := []struct {
		name      string
		mutate    func(*user.WriteUser)
		wantField string
	}{
		{name: "valid", mutate: func(wu *user.WriteUser) {}},
		{name: "missing name", mutate: func(wu *user.WriteUser) { wu.Name = "" }, wantField: "name"},
		{name: "blank name", mutate: func(wu *user.WriteUser) { wu.Name = "   " }, wantField: "name"},
		{name: "missing pronouns", mutate: func(wu *user.WriteUser) { wu.Pronouns = "" }, wantField: "pronouns"},
		{name: "gradYear too early", mutate: func(wu *user.WriteUser) { wu.GradYear = 2023 }, wantField: "gradYear"},
		{name: "gradYear too late", mutate: func(wu *user.WriteUser) { wu.GradYear = 2028 }, wantField: "gradYear"},
		{name: "prefect wrong shape", mutate: func(wu *user.WriteUser) { wu.Prefect = "AB1" }, wantField: "prefect"},
		{name: "prefect too long", mutate: func(wu *user.WriteUser) { wu.Prefect = "A1BC" }, wantField: "prefect"},
		{name: "prefect lowercase ok", mutate: func(wu *user.WriteUser) { wu.Prefect = "a1b" }},
		{name: "bad birthday", mutate: func(wu *user.WriteUser) { wu.Birthday = "tomorrow" }, wantField: "birthday"},
		{name: "birthday ok", mutate: func(wu *user.WriteUser) { wu.Birthday = "2008-04-12" }},
		{name: "referredBy not an email", mutate: func(wu *user.WriteUser) { wu.ReferredBy = "lol" }, wantField: "referredBy"},
		{name: "referredBy wrong domain", mutate: func(wu *user.WriteUser) { wu.ReferredBy = "pal@gmail.com" }, wantField: "referredBy"},
		{name: "referredBy ok", mutate: func(wu *user.WriteUser) { wu.ReferredBy = "pal@" + core.Conf.SchoolEmailDomain }},
		{name: "missing sgoSticker", mutate: func(wu *user.WriteUser) { wu.SgoSticker = nil }, wantField: "sgoSticker"},
		{name: "missing eventAlerts", mutate: func(wu *user.WriteUser) { wu.EventAlerts = nil }, wantField: "eventAlerts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wu := valid()
			tt.mutate(&wu)

			err := wu.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}

			vErrs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("Validate() error = %v; want validator.ValidationErrors", err)
			}
			for _, vErr := range vErrs {
				if vErr.Field() == tt.wantField {
					return
				}
			}
			t.Errorf("Validate() errors %v do not mention %q", vErrs, tt.wantField)
		})
	}
}

func TestWriteUser_Validate_preferredNameDefault(t *testing.T) {
	wu := newWriteUser("Awe Some")
	if err := wu.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if wu.PreferredName != "Awe Some" {
		t.Errorf("preferredName = %q; want defaulted to name", wu.PreferredName)
	}

	wu = newWriteUser("Awe Some")
	wu.PreferredName = "Awesome"
	if err := wu.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if wu.PreferredName != "Awesome" {
		t.Errorf("preferredName = %q; want kept as given", wu.PreferredName)
	}
}

func TestPosition(t *testing.T) {
	for _, pos := range user.Positions {
		if !pos.Valid() {
			t.Errorf("%v should be valid", pos)
		}
	}
	if user.Position("boss").Valid() {
		t.Error("unknown position should not be valid")
	}

	if user.PositionMember.IsStaff() {
		t.Error("members are not staff")
	}
	if !user.PositionExec.IsStaff() || !user.PositionAdmin.IsStaff() {
		t.Error("exec and admin are staff")
	}
}
