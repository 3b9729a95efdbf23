package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Env             string
	ListenAddr      string
	DatabaseURL     string
	RunWorkers      int
	AnalysisURL     string
	AnalysisTimeout time.Duration
	AssemblyTimeout time.Duration
	RiskPolicyFile  string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var out int
		if _, err := fmt.Sscanf(v, "%d", &out); err == nil {
			return out
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func Load() (Config, error) {
	cfg := Config{
		Env:             getenv("APP_ENV", "development"),
		ListenAddr:      getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RunWorkers:      getenvInt("RUN_WORKERS", 0),
		AnalysisURL:     os.Getenv("ANALYSIS_URL"),
		AnalysisTimeout: getenvDuration("ANALYSIS_TIMEOUT", 45*time.Second),
		AssemblyTimeout: getenvDuration("ASSEMBLY_TIMEOUT", 90*time.Second),
		RiskPolicyFile:  os.Getenv("RISK_POLICY_FILE"),
	}
	if cfg.DatabaseURL == "" {
		// Not fatal for early local runs; warn via error value so callers can decide.
		return cfg, fmt.Errorf("DATABASE_URL not set")
	}
	return cfg, nil
}
