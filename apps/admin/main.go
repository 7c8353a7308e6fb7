package main

import (
	"log"
	"os"

	"github.com/trezcool/karo/core"
	"github.com/trezcool/karo/core/fee"
	"github.com/trezcool/karo/core/student"
	"github.com/trezcool/karo/storage/database"
	"github.com/trezcool/karo/storage/feestore"
)

var logger *log.Logger // todo: logger service

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	store := database.NewStore(db, conf)
	defer store.Close()

	// start CLI
	cli := commandLine{
		conf:   conf,
		db:     db,
		stdSvc: student.NewService(feestore.NewStudentRepository(store)),
		feeSvc: fee.NewService(feestore.NewFeeRepository(store), feestore.NewStudentRepository(store), nil, conf),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
