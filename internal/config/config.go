package config

import (
	"errors"
	"flag"
	"log"

	"github.com/AlenaMolokova/escort/internal/constants"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	RunAddr      string  `env:"RUN_ADDRESS" envDefault:":8080"`
	DatabaseURI  string  `env:"DATABASE_URI"`
	NotifierAddr string  `env:"NOTIFIER_ADDRESS" envDefault:"http://localhost:8081"`
	TokenSecret  string  `env:"TOKEN_SECRET"`
	AdminIDs     []int64 `env:"ADMIN_IDS" envSeparator:","`
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	flag.StringVar(&cfg.RunAddr, "a", cfg.RunAddr, "server address")
	flag.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "database URI")
	flag.StringVar(&cfg.NotifierAddr, "n", cfg.NotifierAddr, "notifier service address")
	flag.StringVar(&cfg.TokenSecret, "t", cfg.TokenSecret, "identity token secret")
	flag.Parse()

	if cfg.DatabaseURI == "" {
		return nil, errors.New("DATABASE_URI is required")
	}
	if cfg.TokenSecret == "" {
		cfg.TokenSecret = constants.DefaultTokenSecret
		log.Println("TOKEN_SECRET not set, using default")
	}
	if len(cfg.AdminIDs) == 0 {
		log.Println("ADMIN_IDS is empty, admin endpoints will reject everyone")
	}

	log.Printf("Config loaded: RunAddr=%s, NotifierAddr=%s, admins=%d",
		cfg.RunAddr, cfg.NotifierAddr, len(cfg.AdminIDs))
	return cfg, nil
}
