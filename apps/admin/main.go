package main

import (
	"log"
	"os"

	"github.com/Chhotu7079/UniCore/core"
	"github.com/Chhotu7079/UniCore/core/user"
	logsvc "github.com/Chhotu7079/UniCore/services/logger"
	"github.com/Chhotu7079/UniCore/storage/database"
	sqlxrepos "github.com/Chhotu7079/UniCore/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}

	// start CLI
	cli := commandLine{
		db:     db.DB,
		usrSvc: user.NewService(sqlxrepos.NewAccountRepository(db)),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}
