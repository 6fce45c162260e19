package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported values of DB_DRIVER.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config holds all runtime configuration values of the API server.  Each
// field corresponds to an environment variable; a `.env` file in the
// working directory is read first when present.
type Config struct {
	Env        string        `env:"APP_ENV"      envDefault:"dev"`  // application environment (dev, test, prod)
	Port       string        `env:"APP_PORT"     envDefault:"3001"` // HTTP port to listen on
	LogLevel   string        `env:"LOG_LEVEL"    envDefault:"info"` // zap level name
	JWTSecret  string        `env:"JWT_SECRET,required,notEmpty"`   // secret used to sign bearer tokens
	TokenTTL   time.Duration `env:"TOKEN_TTL"    envDefault:"24h"`  // lifetime of issued tokens
	BcryptCost int           `env:"BCRYPT_COST"  envDefault:"10"`   // bcrypt cost for password hashing

	DB DBConfig

	SeedDemoUser bool   `env:"SEED_DEMO_USER" envDefault:"true"`    // create demo/admin account at startup
	DemoPassword string `env:"DEMO_PASSWORD"  envDefault:"demo123"` // password of the demo account

	StaticDir   string   `env:"STATIC_DIR"   envDefault:"public"`                  // served at / when it exists
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`      // allowed browser origins
	RabbitMQURL string   `env:"RABBITMQ_URL"`                                      // empty disables domain events
	EventLogDir string   `env:"EVENT_LOG_DIR" envDefault:"logs"`                   // where cmd/eventlog writes
}

// DBConfig selects and addresses the relational store.  SQLite needs only
// Path; MySQL uses the remaining fields.
type DBConfig struct {
	Driver string `env:"DB_DRIVER" envDefault:"sqlite"`
	Path   string `env:"DB_PATH"   envDefault:"./messestand.db"`
	User   string `env:"DB_USER"`
	Pass   string `env:"DB_PASS"`
	Host   string `env:"DB_HOST"   envDefault:"127.0.0.1"`
	Port   string `env:"DB_PORT"   envDefault:"3306"`
	Name   string `env:"DB_NAME"   envDefault:"messestand"`
}

// Load reads `.env` (if any) and parses the environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DB.Driver {
	case DriverSQLite:
		if c.DB.Path == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case DriverMySQL:
		if c.DB.User == "" || c.DB.Name == "" {
			return errors.New("DB_USER and DB_NAME are required for the mysql driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if len(c.DemoPassword) > 72 {
		return errors.New("DEMO_PASSWORD exceeds the 72 byte bcrypt limit")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}
