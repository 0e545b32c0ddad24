package foodHandler

import (
	"time"

	foodService "CalorAI/internal/api/food/service"
	"CalorAI/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout = 10 * time.Second
	// analyzeSlack covers normalization, upload and persistence on top of
	// the recognition call itself.
	analyzeSlack = 15 * time.Second
	// frameOverhead is the websocket frame allowance above the upload limit.
	frameOverhead = 64 * 1024
)

type FoodHandler struct {
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	foodService    foodService.IFoodService
	analyzeTimeout time.Duration
	maxFrameBytes  int64
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	fs foodService.IFoodService,
	recognitionTimeout time.Duration,
	maxUploadBytes int64,
) *FoodHandler {
	return &FoodHandler{
		log:            log,
		validator:      validator,
		middleware:     middleware,
		foodService:    fs,
		analyzeTimeout: recognitionTimeout + analyzeSlack,
		maxFrameBytes:  maxUploadBytes + frameOverhead,
	}
}

func (h *FoodHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	food := srv.Group("/food")
	food.Post("/analyze", h.AnalyzeImage)
	food.Get("/analysis/:id", h.GetAnalysis)
	food.Get("/history", h.GetHistory)
	food.Post("/feedback", h.SubmitFeedback)

	food.Use("/ws", wsMiddleware)
	food.Get("/ws", websocket.New(h.handleAnalyzeWebSocket))
}
