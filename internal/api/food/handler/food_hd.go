package foodHandler

import (
	"context"
	"errors"
	"io"

	"CalorAI/internal/api/food"
	contextPkg "CalorAI/pkg/context"
	"CalorAI/pkg/handlerUtil"
	"CalorAI/pkg/log"

	"github.com/gofiber/fiber/v2"
)

func (h *FoodHandler) AnalyzeImage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.analyzeTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	file, err := ctx.FormFile("image")
	if err != nil {
		return errHandler.Handle(ctx, requestID, food.ErrImageRequired, ctx.Path(), "read_form_file")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"file_name":  file.Filename,
		"file_size":  file.Size,
	}).Debug("Processing analyze request")

	fileContent, err := file.Open()
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "open_file")
	}
	defer fileContent.Close()

	data, err := io.ReadAll(fileContent)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_file")
	}

	report, err := h.foodService.AnalyzeImage(c, data, file.Filename)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return errHandler.HandleRequestTimeout(ctx)
		}
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "analyze_image")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, report)
	}
}

func (h *FoodHandler) GetAnalysis(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), defaultTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id := ctx.Params("id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("analysis ID is required"), ctx.Path())
	}

	report, err := h.foodService.GetAnalysis(c, id)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_analysis")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, report)
	}
}

func (h *FoodHandler) GetHistory(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), defaultTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var query food.HistoryQuery
	if err := ctx.QueryParser(&query); err != nil {
		return errHandler.Handle(ctx, requestID, food.ErrInvalidLimit, ctx.Path(), "parse_query")
	}

	scans, err := h.foodService.GetHistory(c, query.Limit)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_history")
	}

	response := food.HistoryResponse{
		Scans: make([]food.HistoryItemResponse, 0, len(scans)),
		Count: len(scans),
	}
	for _, scan := range scans {
		response.Scans = append(response.Scans, food.HistoryItemResponse{
			ID:                 scan.ID,
			ImageURL:           scan.ImageURL,
			TotalCalories:      scan.TotalCalories,
			DetectedFoodsCount: scan.DetectedFoodsCount,
			CreatedAt:          scan.CreatedAt,
		})
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, response)
	}
}

func (h *FoodHandler) SubmitFeedback(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), defaultTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req food.FeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	feedback, err := h.foodService.SubmitFeedback(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "submit_feedback")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, food.FeedbackResponse{
			Message: "Feedback submitted successfully",
			ScanID:  feedback.ScanID,
		})
	}
}
