package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resalign/internal/logger"
	"alfredoptarigan/resalign/internal/models"
	"alfredoptarigan/resalign/internal/repositories"
)

type ResultHandler struct {
	analyses repositories.AnalysisRepository
	log      *zap.Logger
}

func NewResultHandler(analyses repositories.AnalysisRepository, log *zap.Logger) *ResultHandler {
	return &ResultHandler{
		analyses: analyses,
		log:      logger.OrNop(log),
	}
}

// HandleGetAnalysis handles GET /analyses/:id.
func (h *ResultHandler) HandleGetAnalysis(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid analysis ID format",
		})
	}

	analysis, err := h.analyses.FindByIDForUser(c.UserContext(), id, UserID(c))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Analysis not found",
			})
		}
		h.log.Error("failed to load analysis", zap.String("analysis_id", id.String()), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load analysis")
	}

	response := models.AnalysisResponse{
		ID:       analysis.ID.String(),
		Status:   string(analysis.Status),
		ResumeID: analysis.ResumeID.String(),
		JDID:     analysis.JDID.String(),
	}

	if analysis.Status == models.StatusCompleted && analysis.HasReport() {
		var report models.Report
		if err := json.Unmarshal(analysis.Report, &report); err != nil {
			h.log.Warn("stored report unreadable", zap.String("analysis_id", id.String()), zap.Error(err))
		} else {
			response.Report = &report
		}
	}
	if analysis.CompletedAt != nil {
		completedAt := analysis.CompletedAt.UTC().Format(time.RFC3339)
		response.CompletedAt = &completedAt
	}
	if analysis.Status == models.StatusError {
		response.ErrorMessage = analysis.ErrorMessage
	}

	return c.JSON(response)
}
