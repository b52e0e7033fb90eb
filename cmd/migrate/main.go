package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const defaultSchemaFile = "internal/store/schema.sql"

func main() {
	viper.SetDefault("schema_file", defaultSchemaFile)
	viper.SetDefault("timeout", "30s")
	viper.AutomaticEnv()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("schema applied")
}

func run() error {
	dsn := viper.GetString("database_dsn")
	if dsn == "" {
		return errors.New("DATABASE_DSN is required")
	}

	schema, err := os.ReadFile(viper.GetString("schema_file"))
	if err != nil {
		return errors.Wrap(err, "read schema file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("timeout"))
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return errors.Wrap(err, "connect to postgres")
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		return errors.Wrap(err, "apply schema")
	}
	return nil
}
