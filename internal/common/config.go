package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"github.com/joseph-ayodele/statement-extractor/constants"
)

// Config holds all application configuration
type Config struct {
	Extraction ExtractionConfig `yaml:"extraction"`
	Dispatch   DispatchConfig   `yaml:"dispatch"`
	PDF        PDFConfig        `yaml:"pdf"`
	Server     ServerConfig     `yaml:"server"`
	LogLevel   string           `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// ExtractionConfig holds remote extraction service configuration
type ExtractionConfig struct {
	BaseURL           string        `yaml:"base_url" validate:"required,url"`
	APIKey            string        `yaml:"api_key" validate:"required"`
	Model             string        `yaml:"model" validate:"required"`
	Timeout           time.Duration `yaml:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gte=0"`
}

// DispatchConfig holds chunking and job dispatch configuration
type DispatchConfig struct {
	ChunkSize    int           `yaml:"chunk_size" validate:"gte=2,lte=12"`
	Workers      int           `yaml:"workers" validate:"gte=1,lte=64"`
	PollInterval time.Duration `yaml:"poll_interval" validate:"gt=0"`
	JobTimeout   time.Duration `yaml:"job_timeout" validate:"gt=0"`
}

// PDFConfig holds the poppler binaries used to split and combine pages
type PDFConfig struct {
	PdfSeparate string `yaml:"pdfseparate"`
	PdfUnite    string `yaml:"pdfunite"`
	TempDir     string `yaml:"temp_dir"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr         string `yaml:"grpc_addr" validate:"required"`
	MaxDocumentBytes int    `yaml:"max_document_bytes" validate:"gt=0"`
}

// DefaultConfig returns the built-in defaults before file and env overrides.
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			BaseURL: "https://extraction-api.nanonets.com",
			Model:   constants.DefaultModel,
			Timeout: 60 * time.Second,
		},
		Dispatch: DispatchConfig{
			ChunkSize:    constants.DefaultChunkSize,
			Workers:      4,
			PollInterval: 7 * time.Second,
			JobTimeout:   10 * time.Minute,
		},
		PDF: PDFConfig{
			PdfSeparate: "pdfseparate",
			PdfUnite:    "pdfunite",
		},
		Server:   ServerConfig{GRPCAddr: ":8080", MaxDocumentBytes: 64 << 20},
		LogLevel: "info",
	}
}

// LoadConfig builds configuration from defaults, then the optional YAML file
// at path, then environment variables (highest precedence).
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Extraction.BaseURL = getEnv("EXTRACTION_BASE_URL", c.Extraction.BaseURL)
	c.Extraction.APIKey = getEnv("EXTRACTION_API_KEY", c.Extraction.APIKey)
	c.Extraction.Model = getEnv("EXTRACTION_MODEL", c.Extraction.Model)
	c.Extraction.Timeout = getEnvAsDuration("EXTRACTION_TIMEOUT", c.Extraction.Timeout)
	c.Extraction.RequestsPerSecond = getEnvAsFloat64("EXTRACTION_RPS", c.Extraction.RequestsPerSecond)

	c.Dispatch.ChunkSize = getEnvAsInt("CHUNK_SIZE", c.Dispatch.ChunkSize)
	c.Dispatch.Workers = getEnvAsInt("DISPATCH_WORKERS", c.Dispatch.Workers)
	c.Dispatch.PollInterval = getEnvAsDuration("POLL_INTERVAL", c.Dispatch.PollInterval)
	c.Dispatch.JobTimeout = getEnvAsDuration("JOB_TIMEOUT", c.Dispatch.JobTimeout)

	c.PDF.PdfSeparate = getEnv("PDFSEPARATE_BIN", c.PDF.PdfSeparate)
	c.PDF.PdfUnite = getEnv("PDFUNITE_BIN", c.PDF.PdfUnite)
	c.PDF.TempDir = getEnv("PDF_TEMP_DIR", c.PDF.TempDir)

	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)
	if c.Server.GRPCAddr != "" && !strings.Contains(c.Server.GRPCAddr, ":") {
		c.Server.GRPCAddr = ":" + c.Server.GRPCAddr
	}
	c.Server.MaxDocumentBytes = getEnvAsInt("MAX_DOCUMENT_BYTES", c.Server.MaxDocumentBytes)
	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return NewAppError("CONFIG_ERROR", describeValidation(err), ErrInvalidInput)
	}
	return nil
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
