package main

import (
	"context"
	"fmt"

	"github.com/masdens1250/appamine/storage/database"
)

func (cli *commandLine) migrate() error {
	db, err := database.Open(cli.conf)
	if err != nil {
		return err
	}
	defer db.Close()

	if err = database.Migrate(context.Background(), db); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s database is up to date\n", cli.conf.Database.Engine)
	return nil
}
