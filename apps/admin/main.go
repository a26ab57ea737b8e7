package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
	"github.com/shoyeabaslam/kcet-cams-sub000/core/admission"
	logsvc "github.com/shoyeabaslam/kcet-cams-sub000/services/logger"
	"github.com/shoyeabaslam/kcet-cams-sub000/storage/database"
	inmemdb "github.com/shoyeabaslam/kcet-cams-sub000/storage/database/inmem"
	sqlxrepos "github.com/shoyeabaslam/kcet-cams-sub000/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZapLogger(conf)
	if err != nil {
		log.Fatalf("setting up logger: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("admin"), conf)
	logger.Enable(false)

	// set up DB
	var db *sql.DB
	var repo admission.Repository
	if conf.Database.Engine == "inmem" {
		repo = inmemdb.NewAdmissionRepository(inmemdb.Open())
	} else {
		if db, err = database.Open(conf); err != nil {
			logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
		}
		if err = database.Ping(context.Background(), db); err != nil {
			logger.Fatal(fmt.Sprintf("pinging database: %v", err), err)
		}
		repo = sqlxrepos.NewAdmissionRepository(db, conf.Database.LockTimeout)
	}

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	admission.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		conf: conf,
		db:   db,
		svc:  admission.NewService(repo, validate, logger, nil),
		out:  os.Stdout,
	}
	err = cli.run(os.Args)

	if db != nil {
		_ = db.Close()
	}
	_ = zl.Sync()
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		os.Exit(1)
	}
}
