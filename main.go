package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"competition-system/config"
	"competition-system/database"
	"competition-system/handlers"
	"competition-system/metrics"
	"competition-system/security"
	"competition-system/services"
	"competition-system/utils"
	"competition-system/workers"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func main() {
	app := &cli.App{
		Name:  "competition-system",
		Usage: "competition management backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"CONFIG_FILE"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema",
				Action: migrate,
			},
			{
				Name:  "createsuperuser",
				Usage: "create a superuser account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"SUPERUSER_PASSWORD"}},
				},
				Action: createSuperuser,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// setup loads configuration, installs the default logger and opens a migrated database.
func setup(c *cli.Context) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(newLogger(cfg))

	db, err := database.Open(c.Context, cfg.Database.ConnString(), database.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		LogQueries:   cfg.IsDevelopment(),
	})
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(c.Context, db); err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}
	return cfg, db, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func migrate(c *cli.Context) error {
	_, db, err := setup(c)
	if err != nil {
		return err
	}
	defer database.Close(db)
	slog.Info("Schema is up to date")
	return nil
}

func createSuperuser(c *cli.Context) error {
	cfg, db, err := setup(c)
	if err != nil {
		return err
	}
	defer database.Close(db)

	users := services.NewUserService(db, security.PasswordHasher{Cost: cfg.Auth.BcryptCost})
	user, err := users.CreateUser(c.Context, strings.TrimSpace(c.String("username")), c.String("password"), true)
	if err != nil {
		return err
	}
	slog.Info("Superuser created", "username", user.Username)
	return nil
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, db, err := setup(c)
	if err != nil {
		return err
	}
	defer database.Close(db)

	users := services.NewUserService(db, security.PasswordHasher{Cost: cfg.Auth.BcryptCost})
	if cfg.Superuser.Username != "" {
		if _, err := users.EnsureSuperuser(ctx, cfg.Superuser.Username, cfg.Superuser.Password); err != nil {
			return fmt.Errorf("failed to bootstrap superuser: %w", err)
		}
	}

	signer, err := security.NewTokenSigner(cfg.Auth.SecretKey, cfg.Auth.Algorithm, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	auth, err := services.NewAuthService(users, signer)
	if err != nil {
		return err
	}

	m := metrics.New()
	competitions := services.NewCompetitionService(db)
	rosters := services.NewRosterService(db)

	if cfg.Export.Enabled() {
		worker, err := startRosterExport(ctx, cfg.Export, competitions, rosters, m)
		if err != nil {
			return err
		}
		defer worker.Stop()
	}

	app := handlers.NewApp(&handlers.Handler{
		DB:           db,
		Auth:         auth,
		Users:        users,
		Competitions: competitions,
		Participants: services.NewParticipantService(db),
		Complexes:    services.NewComplexService(db),
		Rosters:      rosters,
		Metrics:      m,
	}, cfg.CORSOrigins)

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(fmt.Sprintf(":%d", cfg.Port))
	}()
	slog.Info("Server started", "port", cfg.Port, "env", cfg.Env)

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func startRosterExport(ctx context.Context, cfg config.ExportConfig, competitions *services.CompetitionService, rosters *services.RosterService, m *metrics.Metrics) (*workers.RosterExportWorker, error) {
	store, err := utils.NewObjectStore(ctx, utils.ObjectStoreConfig{
		Bucket:          cfg.Bucket,
		Endpoint:        cfg.Endpoint,
		Region:          cfg.Region,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		PublicBaseURL:   cfg.PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store: %w", err)
	}

	worker := workers.NewRosterExportWorker(competitions, rosters, store, m)
	if err := worker.Start(ctx, cfg.Schedule); err != nil {
		return nil, err
	}
	return worker, nil
}
