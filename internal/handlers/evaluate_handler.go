package handlers

import (
	"bufio"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"alfredoptarigan/resalign/internal/logger"
	"alfredoptarigan/resalign/internal/models"
	"alfredoptarigan/resalign/internal/services"
)

type AnalysisHandler struct {
	worker services.Worker
	log    *zap.Logger
}

func NewAnalysisHandler(worker services.Worker, log *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		worker: worker,
		log:    logger.OrNop(log),
	}
}

// HandleAnalyze handles POST /analyze and streams progress as server-sent events.
func (h *AnalysisHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationMessage(err),
		})
	}

	events, err := h.worker.Submit(services.AnalysisRequest{
		UserID:   UserID(c),
		ResumeID: uuid.MustParse(req.ResumeID),
		JDID:     uuid.MustParse(req.JDID),
	})
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, services.ErrQueueFull) || errors.Is(err, services.ErrWorkerStopped) {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	log := h.log.With(zap.String("resume_id", req.ResumeID), zap.String("jd_id", req.JDID))
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// The analysis keeps running if the client goes away; its events are
		// buffered and dropped with the channel.
		if err := services.WriteSSE(w, events); err != nil {
			log.Info("analysis stream closed early", zap.Error(err))
		}
	}))

	return nil
}
