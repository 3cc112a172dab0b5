package extraction

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/statement-extractor/constants"
)

// Config for the extraction service client.
type Config struct {
	APIKey            string        // if empty, falls back to env EXTRACTION_API_KEY
	BaseURL           string        // default https://extraction-api.nanonets.com
	Model             string        // model selector, default "openai"
	Timeout           time.Duration // per-request http timeout
	RequestsPerSecond float64       // 0 = unlimited
	Burst             int           // limiter burst, default 1
}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("EXTRACTION_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://extraction-api.nanonets.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = constants.DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, cfg.Burst),
		logger:  logger,
	}
}
