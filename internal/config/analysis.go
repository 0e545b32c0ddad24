package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	foodService "CalorAI/internal/api/food/service"
	"CalorAI/pkg/imaging"
	"CalorAI/pkg/recognition"
)

const (
	EnvMaxUploadBytes      = "MAX_UPLOAD_BYTES"
	EnvAllowedExtensions   = "ALLOWED_EXTENSIONS"
	EnvMaxDimension        = "MAX_DIMENSION_PX"
	EnvJPEGQuality         = "JPEG_QUALITY"
	EnvMaxImagePixels      = "MAX_IMAGE_PIXELS"
	EnvConfidenceThreshold = "CONFIDENCE_THRESHOLD"
	EnvRecognitionMode     = "RECOGNITION_MODE"
	EnvRecognitionProvider = "RECOGNITION_PROVIDER"
	EnvMockFallback        = "RECOGNITION_MOCK_FALLBACK"
	EnvMockSeed            = "MOCK_SEED"
	EnvMockMinDelay        = "MOCK_MIN_DELAY_MS"
	EnvMockMaxDelay        = "MOCK_MAX_DELAY_MS"
	EnvRecognitionTimeout  = "RECOGNITION_TIMEOUT"
	EnvReportCacheTTL      = "REPORT_CACHE_TTL"
	EnvHistoryLimit        = "HISTORY_DEFAULT_LIMIT"
	EnvAppPort             = "APP_PORT"
	EnvUploadDir           = "UPLOAD_DIR"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// AnalysisConfig is the process-wide tuning of the analysis pipeline.
type AnalysisConfig struct {
	MaxUploadBytes      int64
	AllowedExtensions   []string
	MaxDimension        int
	JPEGQuality         int
	MaxPixels           int
	ConfidenceThreshold float64
	Mode                string
	Provider            string
	AllowMockFallback   bool
	MockSeed            int64
	MockMinDelay        time.Duration
	MockMaxDelay        time.Duration
	RecognitionTimeout  time.Duration
	CacheTTL            time.Duration
	HistoryLimit        int
	Port                string
	UploadDir           string
}

func DefaultAnalysisConfig() AnalysisConfig {
	img := imaging.DefaultConfig()
	svc := foodService.DefaultConfig()

	return AnalysisConfig{
		MaxUploadBytes:      img.MaxUploadBytes,
		AllowedExtensions:   img.AllowedExtensions,
		MaxDimension:        img.MaxDimension,
		JPEGQuality:         img.Quality,
		MaxPixels:           img.MaxPixels,
		ConfidenceThreshold: svc.ConfidenceThreshold,
		Mode:                recognition.ModeAuto,
		Provider:            ProviderGemini,
		AllowMockFallback:   true,
		MockMinDelay:        500 * time.Millisecond,
		MockMaxDelay:        1500 * time.Millisecond,
		RecognitionTimeout:  svc.RecognitionTimeout,
		CacheTTL:            svc.CacheTTL,
		HistoryLimit:        svc.HistoryLimit,
		Port:                "3000",
		UploadDir:           "./uploads",
	}
}

// LoadAnalysisConfig applies environment overrides to the defaults and
// validates the result. Malformed values are reported, not ignored.
func LoadAnalysisConfig() (AnalysisConfig, error) {
	cfg := DefaultAnalysisConfig()
	if err := cfg.loadEnv(); err != nil {
		return AnalysisConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return AnalysisConfig{}, err
	}
	return cfg, nil
}

func (c *AnalysisConfig) loadEnv() error {
	if v := os.Getenv(EnvMaxUploadBytes); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxUploadBytes, err)
		}
		c.MaxUploadBytes = n
	}
	if v := os.Getenv(EnvAllowedExtensions); v != "" {
		c.AllowedExtensions = parseExtensions(v)
	}
	if v := os.Getenv(EnvMaxDimension); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxDimension, err)
		}
		c.MaxDimension = n
	}
	if v := os.Getenv(EnvJPEGQuality); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvJPEGQuality, err)
		}
		c.JPEGQuality = n
	}
	if v := os.Getenv(EnvMaxImagePixels); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxImagePixels, err)
		}
		c.MaxPixels = n
	}
	if v := os.Getenv(EnvConfidenceThreshold); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvConfidenceThreshold, err)
		}
		c.ConfidenceThreshold = f
	}
	if v := os.Getenv(EnvRecognitionMode); v != "" {
		c.Mode = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(EnvRecognitionProvider); v != "" {
		c.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(EnvMockFallback); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMockFallback, err)
		}
		c.AllowMockFallback = b
	}
	if v := os.Getenv(EnvMockSeed); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMockSeed, err)
		}
		c.MockSeed = n
	}
	if v := os.Getenv(EnvMockMinDelay); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMockMinDelay, err)
		}
		c.MockMinDelay = time.Duration(n) * time.Millisecond
	}
	if v := os.Getenv(EnvMockMaxDelay); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMockMaxDelay, err)
		}
		c.MockMaxDelay = time.Duration(n) * time.Millisecond
	}
	if v := os.Getenv(EnvRecognitionTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRecognitionTimeout, err)
		}
		c.RecognitionTimeout = d
	}
	if v := os.Getenv(EnvReportCacheTTL); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvReportCacheTTL, err)
		}
		c.CacheTTL = d
	}
	if v := os.Getenv(EnvHistoryLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHistoryLimit, err)
		}
		c.HistoryLimit = n
	}
	if v := os.Getenv(EnvAppPort); v != "" {
		c.Port = v
	}
	if v := os.Getenv(EnvUploadDir); v != "" {
		c.UploadDir = v
	}
	return nil
}

func (c *AnalysisConfig) Validate() error {
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("invalid max_upload_bytes: %d", c.MaxUploadBytes)
	}
	if len(c.AllowedExtensions) == 0 {
		return fmt.Errorf("allowed_extensions must not be empty")
	}
	if c.MaxDimension <= 0 {
		return fmt.Errorf("invalid max_dimension_px: %d", c.MaxDimension)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("invalid jpeg_quality: %d", c.JPEGQuality)
	}
	if c.MaxPixels <= 0 {
		return fmt.Errorf("invalid max_image_pixels: %d", c.MaxPixels)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("invalid confidence_threshold: %v", c.ConfidenceThreshold)
	}
	switch c.Mode {
	case recognition.ModeAuto, recognition.ModeMock, recognition.ModeOffline:
	default:
		return fmt.Errorf("invalid recognition mode: %q", c.Mode)
	}
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("invalid recognition provider: %q", c.Provider)
	}
	if c.MockMinDelay < 0 || c.MockMaxDelay < c.MockMinDelay {
		return fmt.Errorf("invalid mock delay range: %s..%s", c.MockMinDelay, c.MockMaxDelay)
	}
	if c.RecognitionTimeout <= 0 {
		return fmt.Errorf("invalid recognition_timeout: %s", c.RecognitionTimeout)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("invalid report_cache_ttl: %s", c.CacheTTL)
	}
	if c.HistoryLimit < 1 || c.HistoryLimit > foodService.MaxHistoryLimit {
		return fmt.Errorf("invalid history_default_limit: %d", c.HistoryLimit)
	}
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %q", c.Port)
	}
	return nil
}

func (c AnalysisConfig) ImageConfig() imaging.Config {
	return imaging.Config{
		MaxUploadBytes:    c.MaxUploadBytes,
		AllowedExtensions: c.AllowedExtensions,
		MaxDimension:      c.MaxDimension,
		Quality:           c.JPEGQuality,
		MaxPixels:         c.MaxPixels,
	}
}

func (c AnalysisConfig) ServiceConfig() foodService.Config {
	return foodService.Config{
		Image:               c.ImageConfig(),
		ConfidenceThreshold: c.ConfidenceThreshold,
		RecognitionTimeout:  c.RecognitionTimeout,
		CacheTTL:            c.CacheTTL,
		HistoryLimit:        c.HistoryLimit,
	}
}

// MockOptions translates the mock tuning. A zero seed keeps the time based
// default.
func (c AnalysisConfig) MockOptions() []recognition.MockOption {
	opts := []recognition.MockOption{
		recognition.WithDelay(c.MockMinDelay, c.MockMaxDelay),
	}
	if c.MockSeed != 0 {
		opts = append(opts, recognition.WithSeed(c.MockSeed))
	}
	return opts
}

func parseExtensions(v string) []string {
	var exts []string
	for _, part := range strings.Split(v, ",") {
		ext := strings.ToLower(strings.TrimSpace(part))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}
