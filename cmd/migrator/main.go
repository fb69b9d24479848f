package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/database"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	var configPath string
	flag.StringVar(&configPath, "config", "", "YAML config file path")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Development {
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	}

	migrator, err := database.Migrate(cfg.DatabaseURL, database.Migrations)
	if err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	defer migrator.Close()

	version, dirty, err := migrator.Version()
	if err != nil {
		log.WithError(err).Error("unable to check migration version")
		os.Exit(1)
	}
	log.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("migration successful")
}
