// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/carterperez-dev/usermgmt/internal/config"
	"github.com/carterperez-dev/usermgmt/internal/core"
	"github.com/carterperez-dev/usermgmt/internal/migrations"
)

const usage = `usage: migrate [-config path] [-env path] <command>

commands:
  up       apply all pending migrations
  down     roll back the latest migration
  status   print applied and pending migrations
  reset    roll back every migration
  version  print the current schema version
`

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	envPath := flag.String("env", ".env", "path to dotenv file")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, *envPath, flag.Arg(0)); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, envPath, command string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load dotenv: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // process is exiting

	switch command {
	case "up":
		err = migrations.Up(ctx, db.SQL())
	case "down":
		err = migrations.Down(ctx, db.SQL())
	case "status":
		err = migrations.Status(ctx, db.SQL())
	case "reset":
		err = migrations.Reset(ctx, db.SQL())
	case "version":
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		return err
	}

	version, err := migrations.Version(ctx, db.SQL())
	if err != nil {
		return err
	}
	slog.Info("schema version", "command", command, "version", version)

	return nil
}
