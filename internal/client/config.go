package client

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config locates the API and the session file.
type Config struct {
	APIURL      string `env:"KALKULATOR_API_URL"      envDefault:"http://localhost:3001/api"`
	SessionFile string `env:"KALKULATOR_SESSION_FILE"`
}

// LoadConfig reads KALKULATOR_*.  The session file defaults to
// ~/.messestand/session.json.
func LoadConfig() (Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	if c.SessionFile == "" {
		c.SessionFile = DefaultSessionPath()
	}
	return c, nil
}

// DefaultSessionPath is the session file in the user's home directory, or
// in the working directory when there is no home.
func DefaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".messestand", "session.json")
	}
	return filepath.Join(home, ".messestand", "session.json")
}
