// Command migrate checks the database connection and applies the schema.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nepal-lottery/lottery-backend/internal/config"
	"github.com/nepal-lottery/lottery-backend/internal/database"
)

func main() {
	checkOnly := flag.Bool("check", false, "only test the connection, do not create tables")
	printSchema := flag.Bool("print", false, "print the schema and exit")
	flag.Parse()

	log := config.GetLogger()

	if *printSchema {
		fmt.Print(database.Schema)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	svc, err := database.NewDatabaseService(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connection failed: %v", err)
	}
	defer svc.Close()

	version, err := svc.Version(ctx)
	if err != nil {
		log.Warnf("could not read server version: %v", err)
	} else {
		log.Infof("connected to %s", version)
	}

	if *checkOnly {
		return
	}
	if err := svc.CreateSchema(ctx); err != nil {
		log.Errorf("migration failed: %v", err)
		os.Exit(1)
	}
	log.Info("schema is up to date")
}
