package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is everything the server reads on start up. Values come from the
// environment, optionally overlaid on a YAML file whose keys are the
// lower-cased variable names (app_port, postgres_host, ...).
type Config struct {
	Port        string
	BasePath    string
	Development bool
	LogFile     string
	LogLevel    string
	NatsURL     string
	DatabaseURL string

	JWT       *JWT
	Cookies   *Cookies
	WebSocket *WebSocket
}

func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_BASE_PATH", "")
	v.SetDefault("DEVELOPMENT", false)
	v.SetDefault("JWT_TOKEN_LIFETIME", 30*24*time.Hour)
	v.SetDefault("COOKIES_SECURE", true)
	v.SetDefault("COOKIES_SAMESITE", "strict")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config %s: %w", path, err)
		}
	}
	return v, nil
}

// lookup reports whether key was given at all, even if empty.
func lookup(v *viper.Viper, key string) (string, bool) {
	if !v.IsSet(key) {
		return "", false
	}
	return v.GetString(key), true
}

func Load(path string) (*Config, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}

	dbURL, err := databaseURL(v)
	if err != nil {
		return nil, err
	}

	jwt, err := NewJWT(v)
	if err != nil {
		return nil, err
	}

	cookies, err := NewCookies(v, jwt)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        v.GetString("APP_PORT"),
		BasePath:    strings.TrimSuffix(v.GetString("APP_BASE_PATH"), "/"),
		Development: development(v),
		LogFile:     v.GetString("LOG_FILE"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		NatsURL:     v.GetString("NATS_URL"),
		DatabaseURL: dbURL,
		JWT:         jwt,
		Cookies:     cookies,
		WebSocket:   NewWebSocket(),
	}
	return cfg, nil
}

func development(v *viper.Viper) bool {
	s, ok := lookup(v, "DEVELOPMENT")
	if !ok {
		return false
	}
	return s != "0" && !strings.EqualFold(s, "false")
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// Fields is the part of the configuration that is safe to log.
func (c *Config) Fields() map[string]any {
	return map[string]any{
		"port":        c.Port,
		"base_path":   c.BasePath,
		"development": c.Development,
		"log_file":    c.LogFile,
		"nats":        c.NatsURL != "",
		"cookies":     c.Cookies.Domain,
	}
}
