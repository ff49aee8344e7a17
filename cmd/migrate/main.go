package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"airport-data/internal/config"
	"airport-data/migrations"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.Postgres().DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Println("Connected to database successfully")

	scripts, err := migrations.Scripts(*direction)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	for _, name := range scripts {
		content, err := migrations.Read(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read migration %s: %v\n", name, err)
			os.Exit(1)
		}

		fmt.Printf("Running migration: %s\n", name)
		if _, err := db.ExecContext(ctx, content); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to execute migration %s: %v\n", name, err)
			os.Exit(1)
		}
	}

	fmt.Println("Migration completed successfully")
}
