// Package config loads service configuration from a YAML file with
// environment variable overrides for deployment secrets.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pagemonk/internal/llm"
	"pagemonk/pkg/logger"
	"pagemonk/pkg/queue"
	"pagemonk/pkg/storage"
	"pagemonk/pkg/worker"
)

const (
	EngineTesseract = "tesseract"
	EngineTextract  = "textract"
)

type ServerConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxFileSize    int64         `yaml:"max_file_size"`
	ProcessTimeout time.Duration `yaml:"process_timeout"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type TextractConfig struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// OCRConfig selects and configures the text recognition engine.
type OCRConfig struct {
	Engine    string         `yaml:"engine"`
	Languages []string       `yaml:"languages"`
	Textract  TextractConfig `yaml:"textract"`
}

// QueueConfig enables the asynq-backed background pipeline. When disabled,
// parsing runs synchronously on the request path.
type QueueConfig struct {
	Enabled bool          `yaml:"enabled"`
	Queue   queue.Config  `yaml:"queue"`
	Worker  worker.Config `yaml:"worker"`
}

type Config struct {
	Server   ServerConfig     `yaml:"server"`
	Database DatabaseConfig   `yaml:"database"`
	Storage  storage.Config   `yaml:"storage"`
	OCR      OCRConfig        `yaml:"ocr"`
	LLM      llm.OllamaConfig `yaml:"llm"`
	Queue    QueueConfig      `yaml:"queue"`
	Logger   logger.Config    `yaml:"logger"`
}

// Load reads the YAML config at path, then applies environment overrides.
// A missing file is not an error; defaults plus environment are enough to
// run locally.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, falling back to environment variables")
	}

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8000,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   10 * time.Minute,
			MaxFileSize:    50 * 1024 * 1024,
			ProcessTimeout: 5 * time.Minute,
		},
		Database: DatabaseConfig{
			DSN: "documents.db",
		},
		OCR: OCRConfig{
			Engine:    EngineTesseract,
			Languages: []string{"eng"},
		},
		LLM: llm.OllamaConfig{
			Endpoint: "http://localhost:11434",
			Model:    "llama3.2",
		},
		Queue: QueueConfig{
			Enabled: false,
			Queue: queue.Config{
				RedisAddr: "localhost:6379",
			},
			Worker: worker.Config{
				RedisAddr:   "localhost:6379",
				Concurrency: 5,
				Queues:      map[string]int{"default": 1},
			},
		},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Server.Port)
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("OLLAMA_ENDPOINT"); v != "" {
		cfg.LLM.Endpoint = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Queue.Queue.RedisAddr = v
		cfg.Queue.Worker.RedisAddr = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.OCR.Textract.Region = v
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("AWS_ACCESS_KEY"); v != "" {
		cfg.OCR.Textract.AccessKey = v
		cfg.Storage.S3.AccessKey = v
	}
	if v := os.Getenv("AWS_SECRET_KEY"); v != "" {
		cfg.OCR.Textract.SecretKey = v
		cfg.Storage.S3.SecretKey = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.Storage.Minio.Endpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.Storage.Minio.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.Storage.Minio.SecretKey = v
	}
}
