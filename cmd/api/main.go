package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pg "birthday-reminders/internal/adapters/storage/postgres"
	"birthday-reminders/internal/config"
	"birthday-reminders/internal/platform/logger"
	"birthday-reminders/internal/setup"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// @title Birthday Reminders API
// @version 1.0
// @description Recordatorios de cumpleaños: alta, edición y ranking por proximidad.
// @BasePath /
func main() {
	app := &cli.App{
		Name:  "birthdays",
		Usage: "Birthday reminders API server",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
		},
		// Sin subcomando => serve
		Action: serve,
	}

	app.ExitErrHandler = func(ctx *cli.Context, err error) {
		if err == nil {
			return
		}
		slog.ErrorContext(ctx.Context, "command failed", slog.String("error", fmt.Sprintf("%+v", err)))
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Start the HTTP API",
		Action: serve,
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create the postgres schema (idempotent)",
		Action: func(cliCtx *cli.Context) error {
			conf, log, err := bootstrap()
			if err != nil {
				return err
			}
			if conf.Storage.Driver != config.StoragePostgres {
				return errors.Errorf("migrate requires storage driver %q, got %q", config.StoragePostgres, conf.Storage.Driver)
			}

			db, err := setup.OpenPostgres(cliCtx.Context, conf)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := pg.Migrate(cliCtx.Context, db); err != nil {
				return errors.Wrap(err, "could not migrate postgres schema")
			}

			log.InfoContext(cliCtx.Context, "schema up to date")
			return nil
		},
	}
}

func serve(cliCtx *cli.Context) error {
	conf, log, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cliCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, closeStorage, err := setup.NewHTTPServerFromConfig(ctx, conf, log)
	if err != nil {
		return errors.Wrap(err, "could not setup http server")
	}
	defer func() {
		if err := closeStorage(); err != nil {
			log.ErrorContext(ctx, "could not close storage", slog.Any("error", err))
		}
	}()

	errs := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "starting server", slog.String("address", conf.HTTP.Address), slog.String("storage", conf.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- errors.WithStack(err)
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	log.InfoContext(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "could not shutdown server")
	}
	return nil
}

func bootstrap() (*config.Config, *slog.Logger, error) {
	conf, err := config.Parse()
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not parse config")
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(conf.Logger.Level),
		Format: logger.ParseFormat(conf.Logger.Format),
		App:    "birthday-reminders",
	})
	slog.SetDefault(log)

	return conf, log, nil
}
