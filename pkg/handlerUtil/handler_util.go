package handlerUtil

import (
	"errors"

	"CalorAI/internal/api/food"
	"CalorAI/pkg/log"
	"CalorAI/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error      string   `json:"error"`
	Message    string   `json:"message"`
	Confidence *float64 `json:"confidence,omitempty"`
	TraceID    string   `json:"trace_id,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Describe converts err into the status code and body sent to clients. It is
// shared by the HTTP handlers and the websocket stream.
func Describe(err error) (int, ErrorResponse) {
	var lowErr *food.LowConfidenceError
	if errors.As(err, &lowErr) {
		confidence := lowErr.Confidence
		kind := food.ErrLowConfidenceDetection.(*response.Error)
		return kind.Code, ErrorResponse{
			Error:      kind.Kind,
			Message:    kind.Error(),
			Confidence: &confidence,
		}
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		return respErr.Code, ErrorResponse{Error: respErr.Kind, Message: respErr.Error()}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code == fiber.StatusRequestEntityTooLarge {
			kind := food.ErrPayloadTooLarge.(*response.Error)
			return kind.Code, ErrorResponse{Error: kind.Kind, Message: kind.Error()}
		}
		return fiberErr.Code, ErrorResponse{Error: "request_error", Message: fiberErr.Message}
	}

	return fiber.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An unexpected error occurred",
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	status, body := Describe(err)

	fields := log.Fields{
		log.RequestIDKey: requestID,
		"error":          err.Error(),
		"code":           status,
		"path":           path,
		"operation":      operation,
	}

	if status >= fiber.StatusInternalServerError {
		if body.Error == "internal_error" {
			body.TraceID = log.ErrorWithTraceID(fields, "Unexpected error")
		} else {
			h.logger.WithFields(fields).Error("Operation failed with error response")
		}
	} else {
		h.logger.WithFields(fields).Warn("Operation failed with error response")
	}

	return c.Status(status).JSON(body)
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		log.RequestIDKey: requestID,
		"error":          err.Error(),
		"path":           path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "validation_error",
		Message: "Validation failed: " + err.Error(),
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(ErrorResponse{
		Error:   "request_timeout",
		Message: utils.StatusMessage(fiber.StatusRequestTimeout),
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
