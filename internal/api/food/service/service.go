package foodService

import (
	"context"
	"time"

	"CalorAI/internal/api/food"
	foodRepository "CalorAI/internal/api/food/repository"
	"CalorAI/internal/entity"
	"CalorAI/pkg/imaging"
	"CalorAI/pkg/recognition"
	"CalorAI/pkg/redis"
	"CalorAI/pkg/utils"

	"github.com/sirupsen/logrus"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

type IFoodService interface {
	AnalyzeImage(ctx context.Context, data []byte, filename string) (entity.AnalysisReport, error)
	GetAnalysis(ctx context.Context, id string) (entity.AnalysisReport, error)
	GetHistory(ctx context.Context, limit int) ([]entity.ScanSummary, error)
	SubmitFeedback(ctx context.Context, req food.FeedbackRequest) (entity.ScanFeedback, error)
	BackendName() string
}

// ImageStore is the upload sink for normalized images. Both the S3 client and
// the local disk store implement it.
type ImageStore interface {
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
	PresignUrl(ctx context.Context, fileUrl string) (string, error)
	DeleteFile(ctx context.Context, fileUrl string) error
}

type Config struct {
	Image               imaging.Config
	ConfidenceThreshold float64
	RecognitionTimeout  time.Duration
	CacheTTL            time.Duration
	HistoryLimit        int
}

func DefaultConfig() Config {
	return Config{
		Image:               imaging.DefaultConfig(),
		ConfidenceThreshold: 0.85,
		RecognitionTimeout:  30 * time.Second,
		CacheTTL:            10 * time.Minute,
		HistoryLimit:        DefaultHistoryLimit,
	}
}

type foodService struct {
	log            *logrus.Logger
	foodRepository foodRepository.Repository
	backend        recognition.Backend
	store          ImageStore
	cache          redis.IRedis
	utils          utils.IUtils
	cfg            Config
}

// NewFoodService wires the pipeline. cache may be nil.
func NewFoodService(
	log *logrus.Logger,
	fr foodRepository.Repository,
	backend recognition.Backend,
	store ImageStore,
	cache redis.IRedis,
	utils utils.IUtils,
	cfg Config,
) IFoodService {
	if cfg.HistoryLimit <= 0 || cfg.HistoryLimit > MaxHistoryLimit {
		cfg.HistoryLimit = DefaultHistoryLimit
	}

	return &foodService{
		log:            log,
		foodRepository: fr,
		backend:        backend,
		store:          store,
		cache:          cache,
		utils:          utils,
		cfg:            cfg,
	}
}

func (s *foodService) BackendName() string {
	return s.backend.Name()
}
