package foodHandler

import (
	"context"
	"time"

	"CalorAI/internal/entity"
	"CalorAI/internal/middleware"
	contextPkg "CalorAI/pkg/context"
	"CalorAI/pkg/handlerUtil"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/websocket/v2"
)

const maxReadTimeout = 60 * time.Second

// handleAnalyzeWebSocket runs the analysis pipeline once per binary frame and
// answers each frame with the report or an error body.
func (h *FoodHandler) handleAnalyzeWebSocket(c *websocket.Conn) {
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)
	logger := h.log.WithField("request_id", requestID)

	logger.Info("Food analysis WebSocket client connected")
	defer logger.Info("Food analysis WebSocket client disconnected")

	c.SetReadLimit(h.maxFrameBytes)

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			logger.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			logger.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Errorf("Food analysis WebSocket error: %v", err)
			}
			break
		}

		if messageType != websocket.BinaryMessage {
			logger.Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		var result interface{}
		report, err := h.analyzeFrame(requestID, message)
		if err != nil {
			_, body := handlerUtil.Describe(err)
			logger.WithField("error", err.Error()).Warn("Frame analysis failed")
			result = body
		} else {
			result = report
		}

		if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
			logger.Errorf("Error setting write deadline: %v", err)
			break
		}

		if err := c.WriteJSON(result); err != nil {
			logger.Errorf("Error writing JSON response: %v", err)
			break
		}

		if err := c.SetWriteDeadline(time.Time{}); err != nil {
			logger.Errorf("Error resetting write deadline: %v", err)
			break
		}
	}
}

// analyzeFrame names the frame after its sniffed content type, since frames
// carry no filename.
func (h *FoodHandler) analyzeFrame(requestID string, frame []byte) (entity.AnalysisReport, error) {
	ctx, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), requestID), h.analyzeTimeout)
	defer cancel()

	filename := "frame" + mimetype.Detect(frame).Extension()

	return h.foodService.AnalyzeImage(ctx, frame, filename)
}
