package main

import (
	"github.com/trezcool/goose"

	appfs "github.com/shoyeabaslam/kcet-cams-sub000/fs"
)

var gooseRunFunc = goose.RunFS // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoDatabase
	}
	return gooseRunFunc(args[0], cli.db, appfs.FS, "migrations", args[1:]...)
}
