package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr            string        `yaml:"addr"`
	JWTSecret       string        `yaml:"jwt_secret"`
	APITimeout      time.Duration `yaml:"timeout"`
	DatabasePath    string        `yaml:"database_path"`
	TokenDuration   time.Duration `yaml:"token_duration"`
	UploadDir       string        `yaml:"upload_dir"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	LoginRateLimit  int           `yaml:"login_rate_limit"`
	LoginRateWindow time.Duration `yaml:"login_rate_window"`
	EngineConfig    EngineConfig  `yaml:"engine"`
}

type EngineConfig struct {
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
	Ollama  OllamaConfig  `yaml:"ollama"`
}

type OllamaConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Retries int           `yaml:"retries"`
	Backoff time.Duration `yaml:"backoff"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:            getEnv("JOBTRACKER_ADDR", ":5000"),
		JWTSecret:       getEnv("JOBTRACKER_JWT_SECRET", "your-secret-key-change-this-in-production"),
		APITimeout:      15 * time.Second,
		DatabasePath:    getEnv("JOBTRACKER_DATABASE_PATH", "jobtracker.db"),
		TokenDuration:   7 * 24 * time.Hour,
		UploadDir:       getEnv("JOBTRACKER_UPLOAD_DIR", "uploads"),
		MaxUploadBytes:  16 << 20,
		LoginRateLimit:  10,
		LoginRateWindow: time.Minute,
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
