package main

import (
	"context"
	"fmt"

	"github.com/trezcool/karo/core"
	"github.com/trezcool/karo/core/student"
)

// addStudent enrolls a new student.Student in the fee ledger.
func (cli *commandLine) addStudent(name, email string) error {
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	std, err := cli.stdSvc.Create(context.Background(), student.NewStudent{Name: name, Email: email})
	if err != nil {
		return err
	}
	fmt.Printf("student %q enrolled with ID %s\n", std.Name, std.ID)
	return nil
}
