package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when ENV_FILE is unset and the file exists.
const DefaultEnvFile = ".env"

type Config struct {
	Port         int    `env:"PORT" envDefault:"3318"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseType string `env:"DATABASE_TYPE" envDefault:"sqlite"`

	// CallerTokenSalt keys the HMAC on caller tokens.
	CallerTokenSalt string `env:"CALLER_TOKEN_SALT"`

	MinReward             int64 `env:"MIN_REWARD" envDefault:"0"`
	RejectClosedResponses bool  `env:"REJECT_CLOSED_RESPONSES"`

	EnvFile string `env:"ENV_FILE"`
}

// ParseFlags loads the env file, reads environment variables, then applies
// flags on top.
func ParseFlags(args []string) (Config, error) {
	if err := loadEnvFile(os.Getenv("ENV_FILE")); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("nexus", flag.ContinueOnError)

	// Network and storage (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite, postgres or memory)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.CallerTokenSalt, "caller-salt", cfg.CallerTokenSalt, "Caller token salt (prefer env)")

	// Poll engine policy
	fs.Int64Var(&cfg.MinReward, "min-reward", cfg.MinReward, "Smallest accepted poll reward")
	fs.BoolVar(&cfg.RejectClosedResponses, "reject-closed", cfg.RejectClosedResponses, "Reject responses to closed polls")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	switch c.DatabaseType {
	case "sqlite", "postgres":
		if c.DatabaseURL == "" {
			return errors.New("database URL required (use -d or DATABASE_URL env)")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database type %q (want sqlite, postgres or memory)", c.DatabaseType)
	}

	// Secrets - MUST be provided
	if c.CallerTokenSalt == "" {
		return errors.New("CALLER_TOKEN_SALT required")
	}

	if c.MinReward < 0 {
		return errors.New("min reward must not be negative")
	}
	return nil
}

// loadEnvFile fills unset environment variables from path. An explicit path
// must exist; the default one is optional.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", path, err)
}
