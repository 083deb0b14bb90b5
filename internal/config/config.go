package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Weather struct {
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint"`
}

type Crypto struct {
	Endpoint      string   `json:"endpoint"`
	DefaultAssets []string `json:"default_assets"`
}

type Config struct {
	Server  Server  `json:"server"`
	Weather Weather `json:"weather"`
	Crypto  Crypto  `json:"crypto"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10},
		Weather: Weather{
			Endpoint: "http://api.openweathermap.org/data/2.5/weather",
		},
		Crypto: Crypto{
			Endpoint:      "https://api.coingecko.com/api/v3/simple/price",
			DefaultAssets: []string{"bitcoin", "ethereum", "cardano", "solana"},
		},
	}
}

// Load reads JSON config from path. If path is empty or the file does not
// exist, it returns defaults. Environment variables override select fields
// so the API key can stay out of the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Server.RequestTimeoutSec = x
		}
	}
	if v := os.Getenv("OPENWEATHER_API_KEY"); v != "" {
		cfg.Weather.APIKey = v
	}
	if v := os.Getenv("WEATHER_ENDPOINT"); v != "" {
		cfg.Weather.Endpoint = v
	}
	if v := os.Getenv("CRYPTO_ENDPOINT"); v != "" {
		cfg.Crypto.Endpoint = v
	}
	if v := os.Getenv("DEFAULT_ASSETS"); v != "" {
		cfg.Crypto.DefaultAssets = splitCSV(v)
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
