package config

import (
	"CalorAI/pkg/handlerUtil"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// multipartOverhead leaves room for the form boundary and headers around the
// image part so an upload of exactly MaxUploadBytes still reaches the
// normalizer.
const multipartOverhead = 64 * 1024

func NewFiber(logger *logrus.Logger, cfg AnalysisConfig) *fiber.App {
	app := fiber.New(
		fiber.Config{
			AppName:           "CalorAI",
			BodyLimit:         int(cfg.MaxUploadBytes) + multipartOverhead,
			DisableKeepalive:  false,
			StrictRouting:     true,
			CaseSensitive:     true,
			EnablePrintRoutes: false,
			JSONEncoder:       jsoniter.Marshal,
			JSONDecoder:       jsoniter.Unmarshal,
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				status, body := handlerUtil.Describe(err)
				if status >= fiber.StatusInternalServerError {
					logger.WithField("error", err.Error()).Error("Unhandled request error")
				}
				return c.Status(status).JSON(body)
			},
		})

	return app
}
