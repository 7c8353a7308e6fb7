package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/trezcool/karo/core"
	"github.com/trezcool/karo/core/fee"
	"github.com/trezcool/karo/core/student"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf   *core.Config
	db     *sql.DB
	stdSvc *student.Service
	feeSvc *fee.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run database migrations (up, down, status, ...)")
	fmt.Println("  addstudent -name NAME -email EMAIL - enroll a student in the fee ledger")
	fmt.Println("  postcharge -student ID -description DESC -amount AMOUNT [-due YYYY-MM-DD] - post a new fee charge")
	fmt.Println("  minttoken -subject ID [-name NAME] [-email EMAIL] [-portal student|teacher|admin] - mint an access token")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ExitOnError)
	addStudentName := addStudentCmd.String("name", "", "The student's full name.")
	addStudentEmail := addStudentCmd.String("email", "", "The student's email address.")

	postChargeCmd := flag.NewFlagSet("postcharge", flag.ExitOnError)
	postChargeStudent := postChargeCmd.String("student", "", "The student's ID.")
	postChargeDesc := postChargeCmd.String("description", "", "The fee type, eg. \"Tuition\".")
	postChargeAmount := postChargeCmd.String("amount", "", "The total amount due.")
	postChargeDue := postChargeCmd.String("due", "", "Optional due date, YYYY-MM-DD.")

	mintTokenCmd := flag.NewFlagSet("minttoken", flag.ExitOnError)
	mintTokenSubject := mintTokenCmd.String("subject", "", "The actor's ID; a student ID for the student portal.")
	mintTokenName := mintTokenCmd.String("name", "", "The actor's full name.")
	mintTokenEmail := mintTokenCmd.String("email", "", "The actor's email address.")
	mintTokenPortal := mintTokenCmd.String("portal", "student", "The portal to grant: student, teacher or admin.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStudentName == "" || *addStudentEmail == "" {
			addStudentCmd.Usage()
			return errHelp
		}
		return cli.addStudent(*addStudentName, *addStudentEmail)
	case "postcharge":
		if err := postChargeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *postChargeStudent == "" || *postChargeDesc == "" || *postChargeAmount == "" {
			postChargeCmd.Usage()
			return errHelp
		}
		return cli.postCharge(*postChargeStudent, *postChargeDesc, *postChargeAmount, *postChargeDue)
	case "minttoken":
		if err := mintTokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *mintTokenSubject == "" {
			mintTokenCmd.Usage()
			return errHelp
		}
		return cli.mintToken(*mintTokenSubject, *mintTokenName, *mintTokenEmail, *mintTokenPortal)
	default:
		cli.printUsage()
		return errHelp
	}
}
