package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/bths-repair/bths-repair-the-world/core/user"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	usrRepo user.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate up|down                        - apply or roll back database migrations")
	fmt.Println("  promote -email EMAIL -position POSITION - set a member's position (member|exec|admin)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	promoteCmd := flag.NewFlagSet("promote", flag.ExitOnError)
	promoteEmail := promoteCmd.String("email", "", "The member's email.")
	promotePos := promoteCmd.String("position", "", "The position to set: member|exec|admin.")

	switch args[1] {
	case "migrate":
		return cli.migrate(args[2:])
	case "promote":
		if err := promoteCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *promoteEmail == "" || *promotePos == "" {
			promoteCmd.Usage()
			return errHelp
		}
		return cli.promote(*promoteEmail, *promotePos)
	default:
		cli.printUsage()
		return errHelp
	}
}
