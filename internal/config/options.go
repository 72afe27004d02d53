package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/pauljones0/listing-watch-bot/internal/validator"
)

// Options are the process settings. Each one can be given as a flag or
// through its environment variable.
type Options struct {
	ConfigPath      string        `long:"config" env:"CONFIG_PATH" default:"config.yaml" description:"Path to the topics/telegram YAML file"`
	StateDir        string        `long:"state-dir" env:"STATE_DIR" default:"data" description:"Directory holding per-topic seen-sets"`
	MarkerPath      string        `long:"marker" env:"MARKER_PATH" default:"data/.new-data" description:"File touched when new ads were found"`
	Concurrency     int           `long:"concurrency" env:"CONCURRENCY" default:"3" description:"Topics processed in parallel" validate:"min=1"`
	MaxRetries      int           `long:"max-retries" env:"FETCH_MAX_RETRIES" default:"3" description:"Retries per page fetch" validate:"min=0"`
	FetchTimeout    time.Duration `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10s" description:"Ceiling on the total time spent fetching one page" validate:"gt=0"`
	FetchMode       string        `long:"fetch-mode" env:"FETCH_MODE" default:"http" choice:"http" choice:"browser" description:"Plain HTTP or headless Chrome"`
	StateBackend    string        `long:"state-backend" env:"STATE_BACKEND" default:"file" choice:"file" choice:"firestore" choice:"redis" description:"Where seen-sets are persisted"`
	ProjectID       string        `long:"project" env:"GOOGLE_CLOUD_PROJECT" description:"GCP project for the firestore backend" validate:"required_if=StateBackend firestore"`
	CredentialsFile string        `long:"credentials" env:"FIRESTORE_CREDENTIALS_FILE" description:"Service account key for the firestore backend"`
	RedisURL        string        `long:"redis-url" env:"REDIS_URL" default:"redis://localhost:6379/0" description:"Server for the redis backend"`
	SelectorsPath   string        `long:"selectors" env:"SELECTORS_CONFIG_PATH" description:"Override for the embedded selector config"`
	LogLevel        string        `long:"log-level" env:"LOG_LEVEL" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"Minimum log level"`
}

// ParseOptions parses args (without the program name). It returns nil, nil
// when help was requested and already printed.
func ParseOptions(args []string) (*Options, error) {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := validator.New().ValidateStruct(opts); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return &opts, nil
}

// LoadDotEnv loads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
