package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/viper"
)

type Database struct {
	Username string
	Password string
	Host     string
	Port     uint16
	DBName   string
	SSLMode  string
}

func loadPassword(v *viper.Viper) (string, error) {
	password, ok := lookup(v, "POSTGRES_PASSWORD")
	if ok {
		return password, nil
	}

	passwordFile, ok := lookup(v, "POSTGRES_PASSWORD_FILE")
	if !ok {
		return "", fmt.Errorf("no POSTGRES_PASSWORD or POSTGRES_PASSWORD_FILE set")
	}

	data, err := os.ReadFile(passwordFile)
	if err != nil {
		return "", fmt.Errorf("unable to read from password file: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

func NewDatabase(v *viper.Viper) (*Database, error) {
	required := map[string]string{}
	for _, key := range []string{
		"POSTGRES_USER", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_DB",
	} {
		value, ok := lookup(v, key)
		if !ok {
			return nil, fmt.Errorf("no %s set", key)
		}
		required[key] = value
	}

	password, err := loadPassword(v)
	if err != nil {
		return nil, fmt.Errorf("unable to load password: %w", err)
	}

	port := v.GetUint16("POSTGRES_PORT")
	if port == 0 {
		return nil, fmt.Errorf("invalid POSTGRES_PORT %q", required["POSTGRES_PORT"])
	}

	sslMode, ok := lookup(v, "POSTGRES_SSLMODE")
	if !ok {
		sslMode = "disable"
	}

	config := &Database{
		Username: required["POSTGRES_USER"],
		Password: password,
		Host:     required["POSTGRES_HOST"],
		Port:     port,
		DBName:   required["POSTGRES_DB"],
		SSLMode:  sslMode,
	}

	return config, nil
}

func (c Database) URL() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		c.Username,
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode,
	)
}

func databaseURL(v *viper.Viper) (string, error) {
	dbURL, ok := lookup(v, "DATABASE_URL")
	if ok {
		return dbURL, nil
	}

	cfg, err := NewDatabase(v)
	if err == nil {
		return cfg.URL(), nil
	}

	return "", fmt.Errorf("no DATABASE_URL set; %w", err)
}

func (c *Config) PgxpoolConfig() (*pgxpool.Config, error) {
	return pgxpool.ParseConfig(c.DatabaseURL)
}
