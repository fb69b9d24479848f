package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/minesweeper/internal/app"
	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/mines"
)

var (
	log = logrus.New()

	configPath string
)

func init() {
	const usage = "YAML config file path, environment only when empty"
	flag.StringVar(&configPath, "config", "", usage)
	flag.StringVar(&configPath, "c", "", usage+" (shorthand)")
}

func setupLogging(cfg *config.Config) {
	level := logrus.InfoLevel
	if cfg.Development {
		level = logrus.DebugLevel
	}
	if cfg.LogLevel != "" {
		parsed, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			log.Fatal("invalid LOG_LEVEL: ", err)
		}
		level = parsed
	}
	log.SetLevel(level)

	if cfg.Development {
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true, FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	if cfg.LogFile != "" {
		hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   cfg.LogFile,
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     28,
			Level:      level,
			Formatter:  &logrus.JSONFormatter{},
		})
		if err != nil {
			log.Fatal("unable to open log file: ", err)
		}
		log.AddHook(hook)
	}

	mines.Log.SetLevel(level)
	mines.Log.SetFormatter(log.Formatter)
	mines.Log.ReplaceHooks(log.Hooks)
}

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	setupLogging(cfg)

	log.WithField("development", cfg.Development).Info("starting up")
	log.WithFields(cfg.Fields()).Debug("config")

	if err := app.New(log, cfg).Start(ctx); err != nil {
		log.Error("exit reason: ", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
