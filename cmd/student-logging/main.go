// main is the entry point of the student-logging console.
//
// STARTUP SEQUENCE:
//  1. Load configuration (optional YAML file, .env, environment)
//  2. Initialise the logger, writing to a file so it never mixes with
//     the menus on stdout
//  3. Open the Record Store: flat text files or SQLite
//  4. Build the profile, appointment and feeling services
//  5. Run the menu loop in a separate goroutine
//  6. Block until the user exits or an OS signal (Ctrl+C / kill) arrives
//
// RUNNING:
//
//	go run ./cmd/student-logging --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/student-logging
//
// With neither, defaults plus environment variables are used and the
// text files live in the current directory.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-logging/internal/appointment"
	"github.com/aanand-mishra/student-logging/internal/config"
	"github.com/aanand-mishra/student-logging/internal/console"
	"github.com/aanand-mishra/student-logging/internal/feeling"
	"github.com/aanand-mishra/student-logging/internal/profile"
	"github.com/aanand-mishra/student-logging/internal/storage"
	"github.com/aanand-mishra/student-logging/internal/storage/sqlite"
	"github.com/aanand-mishra/student-logging/internal/storage/textfile"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "student-logging",
	Short: "Appointments and wellbeing logs for students and their supervisors",
	Long: `student-logging is a menu-driven console for three roles:

  Students             book meetings with their personal supervisor and
                       log how they feel each day
  Personal Supervisors see their students, schedule meetings for them and
                       read their feeling logs
  Senior Tutors        review every meeting and every feeling log`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to the YAML config file (or set CONFIG_PATH)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	// ── 1. Load Config ────────────────────────────────────────────────────
	// MustLoad exits the process if the config is invalid.
	cfg := config.MustLoad(configPath)

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	logOut, closeLog, err := openLog(cfg.LogPath)
	if err != nil {
		return err
	}
	defer closeLog()

	log := setupLogger(cfg.Env, logOut)
	log.Info("starting student-logging",
		slog.String("env", cfg.Env),
		slog.String("backend", cfg.Storage.Backend),
		slog.String("version", "1.0.0"),
	)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	// Everything below only sees the storage.Storage interface.
	store, err := openStorage(cfg, log)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("error", err.Error()))
		return err
	}
	defer store.Close()

	log.Info("storage initialised",
		slog.String("data_dir", cfg.Storage.DataDir),
		slog.String("db", cfg.Storage.StoragePath))

	// ── 4. Build Services ─────────────────────────────────────────────────
	svc, err := newServices(cfg, store, log)
	if err != nil {
		return err
	}
	app := console.New(cmd.InOrStdin(), cmd.OutOrStdout(), svc, log)

	// ── 5. Run the Menus in a Goroutine ───────────────────────────────────
	// Reading stdin blocks, so the menu loop cannot watch for signals
	// itself. main waits on both instead.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx)
	}()

	// ── 6. Wait for Exit or Signal ────────────────────────────────────────
	select {
	case err := <-done:
		if err != nil {
			log.Error("console stopped with an error",
				slog.String("error", err.Error()))
			return err
		}
		log.Info("user exited")
	case <-ctx.Done():
		// Every write is an atomic rename or a single append, so there is
		// nothing half-finished to clean up.
		fmt.Fprintln(cmd.OutOrStdout())
		log.Info("shutdown signal received, exiting")
	}
	return nil
}

// openStorage picks the backend named by storage.backend.
func openStorage(cfg *config.Config, log *slog.Logger) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := sqlite.New(cfg)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		files, err := textfile.New(cfg, log)
		if err != nil {
			return nil, err
		}
		return files, nil
	}
}

func newServices(cfg *config.Config, store storage.Storage, log *slog.Logger) (console.Services, error) {
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return console.Services{}, err
	}
	substring := cfg.Storage.SubstringNameMatch

	return console.Services{
		Profiles: profile.New(store, log,
			profile.WithPasswordCost(cfg.Security.PasswordCost),
			profile.WithPlaintextPasswords(cfg.Security.PlaintextPasswords),
		),
		Appointments: appointment.New(store, log,
			appointment.WithHours(appointment.HoursFromConfig(cfg.Schedule)),
			appointment.WithLocation(loc),
			appointment.WithSubstringMatch(substring),
		),
		Feelings: feeling.New(store, log,
			feeling.WithLocation(loc),
			feeling.WithSubstringMatch(substring),
		),
	}, nil
}

// openLog returns the log destination. "-" is stderr; anything else is a
// file opened for append.
func openLog(path string) (io.Writer, func(), error) {
	if path == "-" || path == "" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string, w io.Writer) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{
				Level: slog.LevelInfo, // INFO and above in production
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{
				Level: slog.LevelDebug, // more verbose in staging
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(w, &slog.HandlerOptions{
				Level: slog.LevelDebug, // all levels in development
			}),
		)
	}
}
