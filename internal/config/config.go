package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
	EnvTest = "test"
)

// ErrMissingJWTSecret is returned when no token signing secret is configured.
var ErrMissingJWTSecret = errors.New("auth jwt secret is required")

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Env    string
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret       string
		TokenTTLMinutes int
		BcryptCost      int
	}
	Log struct {
		Level string
		File  string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv(".env")
	return load()
}

func load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SOCIAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("env", "SOCIAL_ENV", "ENV_STATE")
	_ = v.BindEnv("auth.jwtsecret", "SOCIAL_AUTH_JWTSECRET", "JWT_SECRET_KEY")

	v.SetDefault("env", EnvDev)
	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("database.path", "")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 30)
	v.SetDefault("auth.bcryptcost", bcrypt.DefaultCost)
	v.SetDefault("log.level", "")
	v.SetDefault("log.file", "")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Database.Path == "" {
		cfg.Database.Path = fmt.Sprintf("data/%s.db", cfg.Env)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
		if cfg.Env == EnvDev {
			cfg.Log.Level = "debug"
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvTest:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost %d out of range", c.Auth.BcryptCost)
	}
	return nil
}

// loadDotEnv exports the variables of an optional dotenv file. Variables
// already present in the environment win over the file.
func loadDotEnv(path string) {
	_ = gotenv.Load(path)
}
