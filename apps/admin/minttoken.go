package main

import (
	"fmt"
	"syscall"

	"golang.org/x/term"

	echoapi "github.com/trezcool/karo/apps/api/echo"
	"github.com/trezcool/karo/core"
)

var readSecretFunc = term.ReadPassword // mockable

// mintToken signs an access token for the given actor, the way the identity
// provider would. Meant for smoke tests and support sessions.
func (cli *commandLine) mintToken(subject, name, email, portal string) error {
	if !(portal == "student" || portal == "teacher" || portal == "admin") {
		return fmt.Errorf("portal must be one of student, teacher or admin (got %q)", portal)
	}

	// the shared signing secret may live with the identity provider only
	if cli.conf.SecretKey == "" {
		fmt.Print("Enter signing secret:")
		secret, err := readSecretFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(secret) == 0 {
			return errHelp
		}
		cli.conf.SecretKey = string(secret)
	}
	_ = echoapi.ConfigureAuth(cli.conf)

	claims := echoapi.GetActorClaims(
		cli.conf,
		core.Actor{ID: subject, Name: name, Email: email},
		portal == "admin", portal == "teacher", portal == "student",
	)
	token, err := echoapi.GenerateToken(claims)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
