package envelope

import (
	"sync"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

var (
	cfg  Config
	once sync.Once
)

type Config struct {
	// EncryptionKey is the master key material for envelope encryption,
	// base64-encoded (recommended) or raw text, at least 32 bytes decoded.
	EncryptionKey string `env:"TOTP_ENCRYPTION_KEY"`
	// AppEnv controls whether a missing key is fatal. Anything other than
	// "production" tolerates an absent key so local tooling can run.
	AppEnv string `env:"APP_ENV" envDefault:"development"`
}

// Validate enforces the production startup contract: the service must refuse
// to start without key material rather than silently degrade.
func (c Config) Validate() error {
	if c.EncryptionKey == "" && (c.AppEnv == "production" || c.AppEnv == "prod") {
		return ErrEncryptionKeyRequired
	}
	return nil
}

// LoadConfig reads the envelope configuration from the environment once per
// process and caches the result.
func LoadConfig() (Config, error) {
	var err error
	once.Do(func() {
		if err = env.Parse(&cfg); err != nil {
			return
		}
		err = cfg.Validate()
	})
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}
