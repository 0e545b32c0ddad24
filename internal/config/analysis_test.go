package config

import (
	"strings"
	"testing"
	"time"

	"CalorAI/pkg/recognition"
)

func TestLoadAnalysisConfigDefaults(t *testing.T) {
	cfg, err := LoadAnalysisConfig()
	if err != nil {
		t.Fatalf("LoadAnalysisConfig() error = %v", err)
	}

	if cfg.MaxUploadBytes != 10*1024*1024 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.MaxDimension != 1920 || cfg.JPEGQuality != 85 {
		t.Errorf("image defaults = %d/%d", cfg.MaxDimension, cfg.JPEGQuality)
	}
	if cfg.ConfidenceThreshold != 0.85 {
		t.Errorf("ConfidenceThreshold = %v", cfg.ConfidenceThreshold)
	}
	if cfg.MaxPixels != 50_000_000 {
		t.Errorf("MaxPixels = %d", cfg.MaxPixels)
	}
	if cfg.Mode != recognition.ModeAuto || cfg.Provider != ProviderGemini || !cfg.AllowMockFallback {
		t.Errorf("recognition defaults = %q/%q/%v", cfg.Mode, cfg.Provider, cfg.AllowMockFallback)
	}
	if cfg.RecognitionTimeout != 30*time.Second || cfg.CacheTTL != 10*time.Minute {
		t.Errorf("timeouts = %s/%s", cfg.RecognitionTimeout, cfg.CacheTTL)
	}
	if cfg.HistoryLimit != 20 || cfg.Port != "3000" {
		t.Errorf("HistoryLimit/Port = %d/%s", cfg.HistoryLimit, cfg.Port)
	}
	if strings.Join(cfg.AllowedExtensions, ",") != ".jpg,.jpeg,.png,.heic" {
		t.Errorf("AllowedExtensions = %v", cfg.AllowedExtensions)
	}
}

func TestLoadAnalysisConfigOverrides(t *testing.T) {
	t.Setenv(EnvMaxUploadBytes, "2048")
	t.Setenv(EnvAllowedExtensions, "JPG, png ,")
	t.Setenv(EnvConfidenceThreshold, "0.6")
	t.Setenv(EnvRecognitionMode, "Mock")
	t.Setenv(EnvRecognitionProvider, "openai")
	t.Setenv(EnvMockFallback, "false")
	t.Setenv(EnvMockSeed, "42")
	t.Setenv(EnvMockMinDelay, "0")
	t.Setenv(EnvMockMaxDelay, "10")
	t.Setenv(EnvRecognitionTimeout, "5s")
	t.Setenv(EnvHistoryLimit, "50")
	t.Setenv(EnvAppPort, "8080")
	t.Setenv(EnvMaxImagePixels, "1000000")

	cfg, err := LoadAnalysisConfig()
	if err != nil {
		t.Fatalf("LoadAnalysisConfig() error = %v", err)
	}

	if cfg.MaxUploadBytes != 2048 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if strings.Join(cfg.AllowedExtensions, ",") != ".jpg,.png" {
		t.Errorf("AllowedExtensions = %v", cfg.AllowedExtensions)
	}
	if cfg.Mode != recognition.ModeMock || cfg.Provider != ProviderOpenAI || cfg.AllowMockFallback {
		t.Errorf("recognition = %q/%q/%v", cfg.Mode, cfg.Provider, cfg.AllowMockFallback)
	}
	if cfg.MockSeed != 42 || cfg.MockMaxDelay != 10*time.Millisecond {
		t.Errorf("mock = %d/%s", cfg.MockSeed, cfg.MockMaxDelay)
	}
	if len(cfg.MockOptions()) != 2 {
		t.Errorf("MockOptions() = %d options, want 2", len(cfg.MockOptions()))
	}

	svc := cfg.ServiceConfig()
	if svc.ConfidenceThreshold != 0.6 || svc.RecognitionTimeout != 5*time.Second || svc.HistoryLimit != 50 {
		t.Errorf("ServiceConfig() = %+v", svc)
	}
	if svc.Image.MaxUploadBytes != 2048 || svc.Image.Quality != 85 || svc.Image.MaxPixels != 1000000 {
		t.Errorf("ServiceConfig().Image = %+v", svc.Image)
	}
}

func TestLoadAnalysisConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
	}{
		{"malformed size", EnvMaxUploadBytes, "ten"},
		{"zero size", EnvMaxUploadBytes, "0"},
		{"threshold above one", EnvConfidenceThreshold, "1.5"},
		{"unknown mode", EnvRecognitionMode, "cloud"},
		{"unknown provider", EnvRecognitionProvider, "bard"},
		{"quality out of range", EnvJPEGQuality, "101"},
		{"zero pixel budget", EnvMaxImagePixels, "0"},
		{"malformed timeout", EnvRecognitionTimeout, "soon"},
		{"history too large", EnvHistoryLimit, "500"},
		{"malformed fallback", EnvMockFallback, "maybe"},
		{"bad port", EnvAppPort, "http"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)

			if _, err := LoadAnalysisConfig(); err == nil {
				t.Errorf("expected an error for %s=%q", tt.env, tt.value)
			}
		})
	}
}
