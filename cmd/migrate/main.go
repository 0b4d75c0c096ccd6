// Command migrate applies and authors the embedded goose migrations.
//
//	migrate [-dir path] up|down|status|redo
//	migrate version <YYYYMMDDHHMMSS>
//	migrate [-dir path] create <name>
//	migrate [-dir path] validate
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/angelmondragon/postoko-backend/pkg/config"
	"github.com/angelmondragon/postoko-backend/pkg/db"
	"github.com/angelmondragon/postoko-backend/pkg/logger"
	"github.com/angelmondragon/postoko-backend/pkg/migrate"
)

var errUsage = errors.New("usage: migrate [-dir path] up|down|status|redo|version <v>|create <name>|validate")

func main() {
	dir := flag.String("dir", migrate.DefaultDir, "migration directory used by create and validate")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), errUsage)
		flag.PrintDefaults()
	}
	flag.Parse()

	_ = godotenv.Load()

	if err := run(context.Background(), *dir, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, dir string, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	command, rest := args[0], args[1:]

	// Authoring commands work on files only.
	switch command {
	case "create":
		if len(rest) != 1 {
			return fmt.Errorf("create needs a name: %w", errUsage)
		}
		path, err := migrate.CreateSQLMigration(dir, rest[0])
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	case "validate":
		if err := multierr.Combine(migrate.ValidateEmbedded(), migrate.ValidateDir(dir)); err != nil {
			return err
		}
		fmt.Println("migrations ok")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer client.Close()

	sqlDB, err := client.SQL()
	if err != nil {
		return err
	}
	ctx = logg.WithFields(ctx, map[string]any{
		"cmd":     command,
		"dialect": client.Dialect(),
	})

	switch command {
	case "up", "down", "status", "redo":
		if len(rest) != 0 {
			return errUsage
		}
		err = migrate.Run(ctx, sqlDB, client.Dialect(), command)
	case "version":
		if len(rest) != 1 {
			return fmt.Errorf("version needs a target: %w", errUsage)
		}
		err = migrate.MigrateToVersion(ctx, sqlDB, client.Dialect(), rest[0])
	default:
		return fmt.Errorf("unknown command %q: %w", command, errUsage)
	}
	if err != nil {
		logg.Error(ctx, "migration failed", err)
		return err
	}
	logg.Info(ctx, "migration finished")
	return nil
}
