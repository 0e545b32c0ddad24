package config

import (
	"context"
	"errors"
	"fmt"

	"CalorAI/database/postgres"
	foodHandler "CalorAI/internal/api/food/handler"
	foodRepository "CalorAI/internal/api/food/repository"
	foodService "CalorAI/internal/api/food/service"
	"CalorAI/internal/middleware"
	"CalorAI/pkg/gemini"
	"CalorAI/pkg/localstore"
	"CalorAI/pkg/openai"
	"CalorAI/pkg/recognition"
	"CalorAI/pkg/redis"
	"CalorAI/pkg/s3"
	"CalorAI/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	db          *sqlx.DB
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	handlers    []handler
	cfg         AnalysisConfig
	redisServer redis.IRedis
	imageStore  foodService.ImageStore
	uploadDir   string
	backend     recognition.Backend
	closers     []func() error
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{cfg: DefaultAnalysisConfig()}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithAnalysisConfig(cfg AnalysisConfig) ServerOption {
	return func(s *Server) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid analysis config: %w", err)
		}
		s.cfg = cfg
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		s.closers = append(s.closers, db.Close)
		return nil
	}
}

// WithRedisServer connects the report cache. Redis is optional: a failed
// connection is logged and analysis reads go straight to the database.
func WithRedisServer() ServerOption {
	return func(s *Server) error {
		client, err := redis.New(context.Background())
		if err != nil {
			if s.log != nil {
				s.log.Warnf("Report cache disabled: %v", err)
			}
			return nil
		}
		s.redisServer = client
		s.closers = append(s.closers, client.Close)
		return nil
	}
}

// WithImageStore uploads to S3 when a bucket is configured and to the local
// upload directory otherwise.
func WithImageStore() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err == nil {
			s.imageStore = client
			return nil
		}
		if !errors.Is(err, s3.ErrBucketNotConfigured) {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}

		store, err := localstore.New(s.cfg.UploadDir, "/uploads")
		if err != nil {
			return fmt.Errorf("failed to create local image store: %w", err)
		}
		if s.log != nil {
			s.log.WithField("dir", store.Dir()).Warn("No S3 bucket configured, storing uploads on local disk")
		}
		s.imageStore = store
		s.uploadDir = store.Dir()
		return nil
	}
}

// WithRecognitionBackend selects the recognition backend once for the
// lifetime of the process.
func WithRecognitionBackend() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before recognition backend")
		}

		var vision recognition.VisionModel
		if s.cfg.Mode == recognition.ModeAuto {
			vision = s.newVisionModel()
		}

		backend, reason := recognition.Select(recognition.Selection{
			Mode:              s.cfg.Mode,
			Provider:          s.cfg.Provider,
			Vision:            vision,
			AllowMockFallback: s.cfg.AllowMockFallback,
			MockOptions:       s.cfg.MockOptions(),
			Logger:            s.log,
		})

		entry := s.log.WithFields(logrus.Fields{
			"backend": backend.Name(),
			"reason":  reason,
		})
		if s.cfg.Mode == recognition.ModeAuto && vision == nil {
			entry.Warn("Recognition backend degraded")
		} else {
			entry.Info("Recognition backend selected")
		}

		s.backend = backend
		return nil
	}
}

func (s *Server) newVisionModel() recognition.VisionModel {
	switch s.cfg.Provider {
	case ProviderOpenAI:
		client, err := openai.NewVision()
		if err != nil {
			s.log.Warnf("OpenAI vision client unavailable: %v", err)
			return nil
		}
		return client
	default:
		client, err := gemini.NewGeminiClient(context.Background())
		if err != nil {
			s.log.Warnf("Gemini client unavailable: %v", err)
			return nil
		}
		s.closers = append(s.closers, client.Close)
		return client
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() error {
	if s.db == nil {
		return fmt.Errorf("database is required")
	}
	if s.imageStore == nil {
		return fmt.Errorf("image store is required")
	}
	if s.backend == nil {
		return fmt.Errorf("recognition backend is required")
	}
	if s.utils == nil {
		s.utils = utils.New()
	}
	if s.middleware == nil {
		s.middleware = middleware.New(s.log)
	}

	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())

	// Food Domain
	foodRepo := foodRepository.New(s.db, s.log)
	foodServices := foodService.NewFoodService(s.log, foodRepo, s.backend, s.imageStore, s.redisServer, s.utils, s.cfg.ServiceConfig())
	foodHandlers := foodHandler.New(s.log, s.validator, s.middleware, foodServices, s.cfg.RecognitionTimeout, s.cfg.MaxUploadBytes)

	s.setupHealthCheck()
	if s.uploadDir != "" {
		s.engine.Static("/uploads", s.uploadDir)
	}
	s.handlers = append(s.handlers, foodHandlers)

	return nil
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	return s.engine.Listen(fmt.Sprintf(":%s", s.cfg.Port))
}

// Shutdown stops accepting requests and releases the database, cache and
// hosted clients.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.engine.ShutdownWithContext(ctx)

	for i := len(s.closers) - 1; i >= 0; i-- {
		if cerr := s.closers[i](); cerr != nil {
			s.log.Warnf("Failed to release resource: %v", cerr)
		}
	}

	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
			"backend": s.backend.Name(),
		})
	})
}
