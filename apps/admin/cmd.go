package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
	"github.com/shoyeabaslam/kcet-cams-sub000/core/admission"
)

const cliOfficer = "admin-cli"

var (
	errHelp       = errors.New("help provided")
	errNoDatabase = errors.New("this command needs a PostgreSQL database")
)

type commandLine struct {
	conf *core.Config
	db   *sql.DB // nil with the in-memory engine
	svc  *admission.Service
	out  io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, version, ...)")
	_, _ = fmt.Fprintln(cli.out, "  seed -file CATALOG.yaml - create or update document types and fee structures")
	_, _ = fmt.Fprintln(cli.out, "  token -officer ID [-name NAME] [-email EMAIL] [-admin] - print a signed officer token")
	_, _ = fmt.Fprintln(cli.out, "  recompute -student ID | -all [-by OFFICER] - re-derive ledger, documents and status")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedCmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	seedCmd.SetOutput(cli.out)
	seedFile := seedCmd.String("file", "", "Path of the YAML catalog (relative paths start at the project root).")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenOfficer := tokenCmd.String("officer", "", "The officer identifier (token subject).")
	tokenName := tokenCmd.String("name", "", "The officer's display name.")
	tokenEmail := tokenCmd.String("email", "", "The officer's email.")
	tokenAdmin := tokenCmd.Bool("admin", false, "Grant the admin role.")

	recomputeCmd := flag.NewFlagSet("recompute", flag.ContinueOnError)
	recomputeCmd.SetOutput(cli.out)
	recomputeStudent := recomputeCmd.String("student", "", "The student ID.")
	recomputeAll := recomputeCmd.Bool("all", false, "Recompute every student.")
	recomputeBy := recomputeCmd.String("by", cliOfficer, "Recorded as the author of status changes.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *seedFile == "" {
			seedCmd.Usage()
			return errHelp
		}
		return cli.seed(*seedFile)
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenOfficer == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenOfficer, *tokenName, *tokenEmail, *tokenAdmin)
	case "recompute":
		if err := recomputeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if (*recomputeStudent == "") == !*recomputeAll {
			recomputeCmd.Usage()
			return errHelp
		}
		return cli.recompute(*recomputeStudent, *recomputeAll, *recomputeBy)
	default:
		cli.printUsage()
		return errHelp
	}
}
