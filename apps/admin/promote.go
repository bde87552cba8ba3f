package main

import (
	"context"

	"github.com/bths-repair/bths-repair-the-world/core"
	"github.com/bths-repair/bths-repair-the-world/core/user"
)

func (cli *commandLine) promote(email, position string) error {
	pos := user.Position(core.CleanString(position, true /* lower */))
	if !pos.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "position", Error: "invalid position"})
	}
	return cli.usrRepo.SetPosition(context.Background(), core.CleanString(email, true /* lower */), pos)
}
