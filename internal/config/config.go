// Package config handles loading and parsing application configuration.
// It supports three sources (later ones win):
//  1. Defaults baked into the struct tags (env-default:"...")
//  2. An optional YAML file: --config=/path/to/config.yaml or
//     CONFIG_PATH=/path/to/config.yaml
//  3. Environment variables, including any found in a local .env file
//
// Unlike a server, a console tool should run with zero setup, so a
// missing config path is not an error: defaults plus environment are
// enough to start.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Storage backends accepted in storage.backend.
const (
	BackendText   = "text"
	BackendSQLite = "sqlite"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev" validate:"oneof=dev staging prod"`

	// LogPath is where structured logs go. Logs never share stdout with
	// the menus; "-" sends them to stderr.
	LogPath string `yaml:"log_path" env:"LOG_PATH" env-default:"student-logging.log"`

	Storage  Storage  `yaml:"storage"`
	Schedule Schedule `yaml:"schedule"`
	Security Security `yaml:"security"`
}

// Storage selects and configures the Record Store backend.
type Storage struct {
	// Backend is "text" (flat files, the default) or "sqlite".
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"text" validate:"oneof=text sqlite"`

	// DataDir holds the text files. Relative file names below are
	// resolved against it.
	DataDir string `yaml:"data_dir" env:"DATA_DIR" env-default:"."`

	// StoragePath is the filesystem path to the SQLite .db file.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"student-logging.db"`

	// SubstringNameMatch restores the legacy lookup where a user's
	// feeling logs and meetings are every line containing their name
	// anywhere. Off by default: names are compared field by field.
	SubstringNameMatch bool `yaml:"substring_name_match" env:"SUBSTRING_NAME_MATCH" env-default:"false"`

	Files Files `yaml:"files"`
}

// Files names each flat file of the text backend.
type Files struct {
	Students     string `yaml:"students" env:"STUDENTS_FILE" env-default:"students.txt" validate:"required"`
	Supervisors  string `yaml:"supervisors" env:"SUPERVISORS_FILE" env-default:"ps.txt" validate:"required"`
	SeniorTutors string `yaml:"senior_tutors" env:"SENIOR_TUTORS_FILE" env-default:"st.txt" validate:"required"`
	Assignments  string `yaml:"assignments" env:"ASSIGNMENTS_FILE" env-default:"students_under_ps.txt" validate:"required"`
	Appointments string `yaml:"appointments" env:"APPOINTMENTS_FILE" env-default:"appointments.txt" validate:"required"`
	FeelingsLog  string `yaml:"feelings_log" env:"FEELINGS_LOG_FILE" env-default:"feelings_log.txt" validate:"required"`
}

// Schedule describes the bookable working day.
type Schedule struct {
	// DayStart and DayEnd are offsets from midnight. DayEnd is itself a
	// bookable slot.
	DayStart time.Duration `yaml:"day_start" env:"SCHEDULE_DAY_START" env-default:"9h"`
	DayEnd   time.Duration `yaml:"day_end" env:"SCHEDULE_DAY_END" env-default:"17h" validate:"gtfield=DayStart,lte=24h"`

	SlotLength time.Duration `yaml:"slot_length" env:"SCHEDULE_SLOT_LENGTH" env-default:"30m" validate:"gt=0"`

	// Timezone is an IANA name; "Local" uses the machine's zone.
	Timezone string `yaml:"timezone" env:"SCHEDULE_TIMEZONE" env-default:"Local"`
}

// Security controls password storage.
type Security struct {
	// PasswordCost is the bcrypt cost for newly stored passwords;
	// 0 means bcrypt.DefaultCost.
	PasswordCost int `yaml:"password_cost" env:"PASSWORD_COST" validate:"omitempty,min=4,max=31"`

	// PlaintextPasswords stores new passwords as-is, like legacy profile
	// files. Existing plain-text lines authenticate either way.
	PlaintextPasswords bool `yaml:"plaintext_passwords" env:"PLAINTEXT_PASSWORDS"`
}

// Location resolves Schedule.Timezone.
func (s Schedule) Location() (*time.Location, error) {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// Path resolves a text-backend file name against DataDir.
func (s Storage) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.DataDir, name)
}

// Load reads the configuration.
//
// configPath may be empty; CONFIG_PATH is consulted next. When neither
// names a file only defaults and environment variables are used.
func Load(configPath string) (*Config, error) {
	// ── Source 0: .env ───────────────────────────────────────────────
	// godotenv never overrides variables that are already set, so the
	// real environment keeps precedence over the file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	var cfg Config
	if configPath != "" {
		// Verify the file exists before trying to read it, so the user
		// gets a clear message rather than a cryptic parse error.
		if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: file does not exist: %s", configPath)
		}

		// cleanenv.ReadConfig reads the YAML file, then applies env
		// overrides and env-default values to every field left unset.
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	if _, err := cfg.Schedule.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad is Load for main: if this returns, the config is valid.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err.Error())
	}
	return cfg
}
