package main

import (
	"fmt"

	"github.com/bths-repair/bths-repair-the-world/core"
	"github.com/bths-repair/bths-repair-the-world/storage/database"
)

// mockable
var (
	migrateUpFunc   = database.Migrate
	migrateDownFunc = database.Rollback
)

func (cli *commandLine) migrate(args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	switch args[0] {
	case "up":
		return migrateUpFunc(core.Conf)
	case "down":
		return migrateDownFunc(core.Conf)
	default:
		return fmt.Errorf("%q: no such command", args[0])
	}
}
