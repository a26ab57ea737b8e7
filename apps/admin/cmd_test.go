package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"io/ioutil"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/shoyeabaslam/kcet-cams-sub000/apps/api/echo"
	"github.com/shoyeabaslam/kcet-cams-sub000/core/admission"
	testutil "github.com/shoyeabaslam/kcet-cams-sub000/tests"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	svc, _ := testutil.NewService(t, nil)
	out := new(bytes.Buffer)
	return &commandLine{
		conf: testutil.Conf,
		db:   new(sql.DB), // never used: goose is mocked
		svc:  svc,
		out:  out,
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string
}

func runCLITests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
			default:
				require.NoError(t, err)
			}
			if tt.wantOut != "" {
				assert.Contains(t, out.String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, out := setup(t)

	runCLITests(t, cli, out, []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: "Usage:"},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "seed: no file", args: []string{"seed"}, wantErr: errHelp},
		{name: "token: no officer", args: []string{"token"}, wantErr: errHelp},
		{name: "recompute: no target", args: []string{"recompute"}, wantErr: errHelp},
		{name: "recompute: both targets", args: []string{"recompute", "-all", "-student", "x"}, wantErr: errHelp},
	})
}

func Test_commandLine_migrate(t *testing.T) {
	cli, out := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		if dir != "migrations" {
			return fmt.Errorf("unexpected dir %q", dir)
		}
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, cli, out, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "refunds", "sql"}},
	})

	t.Run("no database", func(t *testing.T) {
		cli.db = nil
		assert.Equal(t, errNoDatabase, cli.run([]string{"admin", "migrate", "up"}))
	})
}

func Test_commandLine_seed(t *testing.T) {
	cli, out := setup(t)

	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, ioutil.WriteFile(p, []byte(content), 0o600))
		return p
	}
	valid := write("catalog.yaml", `
document_types:
  - code: marks_card
    name: Marks card
    required: true
  - code: PHOTO
    name: Photo
fee_structures:
  - course_code: cse
    academic_year: 2024-25
    total_fee: 10000000
`)
	unknownKey := write("unknown.yaml", "courses: []\n")
	badFee := write("badfee.yaml", `
fee_structures:
  - course_code: CSE
    academic_year: 2024-26
    total_fee: 100
`)

	runCLITests(t, cli, out, []cliTest{
		{name: "missing file", args: []string{"seed", "-file", filepath.Join(dir, "nope.yaml")}, wantErrStr: "reading catalog"},
		{name: "unknown key", args: []string{"seed", "-file", unknownKey}, wantErrStr: "parsing catalog"},
		{name: "invalid fee structure", args: []string{"seed", "-file", badFee}, wantErrStr: "saving fee structure"},
		{name: "seeded", args: []string{"seed", "-file", valid}, wantOut: "fee structure CSE 2024-25: 100000.00"},
		{name: "seeded again (upsert)", args: []string{"seed", "-file", valid}, wantOut: "document type #1 MARKS_CARD (required: true)"},
	})

	t.Run("relative to the project root", func(t *testing.T) {
		conf := *testutil.Conf
		conf.WorkDir = dir
		cli.conf = &conf
		defer func() { cli.conf = testutil.Conf }()

		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "seed", "-file", "catalog.yaml"}))
		assert.Contains(t, out.String(), "fee structure CSE 2024-25: 100000.00")
	})

	types, err := cli.svc.ListDocumentTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "MARKS_CARD", types[0].Code)
	assert.False(t, types[1].IsRequired)
}

func Test_commandLine_token(t *testing.T) {
	cli, out := setup(t)

	require.NoError(t, cli.run([]string{"admin", "token", "-officer", "off-7", "-name", "Ravi", "-admin"}))

	raw := strings.TrimSpace(out.String())
	claims := new(echoapi.Claims)
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testutil.Conf.SecretKey), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "off-7", claims.Subject)
	assert.Equal(t, "Ravi", claims.Name)
	assert.True(t, claims.HasRole(echoapi.RoleAdmin))
	assert.True(t, claims.HasRole(echoapi.RoleOfficer))
}

func Test_commandLine_recompute(t *testing.T) {
	cli, out := setup(t)
	cat := testutil.SeedCatalog(t, cli.svc)
	stu := testutil.RegisterStudent(t, cli.svc, "APP-1", "", &cat.CSE)
	testutil.RegisterStudent(t, cli.svc, "APP-2", "", nil)

	// nothing changed since registration
	runCLITests(t, cli, out, []cliTest{
		{name: "unknown student", args: []string{"recompute", "-student", "nope"}, wantErr: admission.ErrStudentNotFound},
		{name: "one student", args: []string{"recompute", "-student", stu.ID}, wantOut: "APP-1: unchanged (APPLICATION_ENTERED)"},
		{name: "all students", args: []string{"recompute", "-all"}, wantOut: "0 student(s) changed status"},
	})
}
