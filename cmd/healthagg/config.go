package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// config holds settings read from the environment. Command-line flags
// override every field.
type config struct {
	SleepFile    string `env:"HEALTHAGG_SLEEP_FILE" envDefault:"sleep.json"`
	WorkoutsFile string `env:"HEALTHAGG_WORKOUTS_FILE" envDefault:"workouts.json"`
	OutputFile   string `env:"HEALTHAGG_OUTPUT_FILE" envDefault:"days.json"`
	DefaultZone  string `env:"HEALTHAGG_DEFAULT_ZONE"`
	ZoneInfoDir  string `env:"HEALTHAGG_ZONEINFO_DIR"`
	Verbose      bool   `env:"HEALTHAGG_VERBOSE"`
}

// loadConfig reads envFile when it exists, then the process environment.
// Variables already set in the environment win over the file.
func loadConfig(envFile string) (config, error) {
	var cfg config
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
