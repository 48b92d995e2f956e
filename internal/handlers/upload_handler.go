package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/resalign/internal/logger"
	"alfredoptarigan/resalign/internal/models"
	"alfredoptarigan/resalign/internal/repositories"
	"alfredoptarigan/resalign/internal/services"
)

const (
	kindResume         = "resume"
	kindJobDescription = "job_description"
)

// UploadHandler stores structured résumés and job descriptions for the caller.
type UploadHandler struct {
	resumeRepo  repositories.ResumeRepository
	jdRepo      repositories.JobDescriptionRepository
	store       services.DocumentStore
	maxFileSize int64
	log         *zap.Logger
}

func NewUploadHandler(
	resumeRepo repositories.ResumeRepository,
	jdRepo repositories.JobDescriptionRepository,
	store services.DocumentStore,
	maxFileSize int64,
	log *zap.Logger,
) *UploadHandler {
	return &UploadHandler{
		resumeRepo:  resumeRepo,
		jdRepo:      jdRepo,
		store:       store,
		maxFileSize: maxFileSize,
		log:         logger.OrNop(log),
	}
}

// HandleCreateResume handles POST /resumes. The multipart form carries the
// extracted résumé as JSON in "extracted_data" and optionally the original
// PDF in "file".
func (h *UploadHandler) HandleCreateResume(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	raw := strings.TrimSpace(firstValue(form.Value["extracted_data"]))
	if raw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "extracted_data is required",
		})
	}

	var structured models.StructuredResume
	if err := json.Unmarshal([]byte(raw), &structured); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "extracted_data is not a valid resume",
		})
	}
	extracted, err := json.Marshal(structured)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to encode resume")
	}

	resume := models.Resume{
		ID:            uuid.New(),
		UserID:        UserID(c),
		ExtractedData: datatypes.JSON(extracted),
	}

	if files := form.File["file"]; len(files) > 0 {
		file := files[0]
		if file.Size > h.maxFileSize {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("file too large. Max size: %d bytes", h.maxFileSize),
			})
		}

		path, err := h.saveFile(c, file)
		if err != nil {
			if errors.Is(err, services.ErrInvalidFileType) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "only PDF files are accepted",
				})
			}
			h.log.Error("failed to store resume file", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to save resume file",
			})
		}
		resume.StoragePath = path
		resume.OriginalName = file.Filename
	}

	if err := h.resumeRepo.Create(c.UserContext(), &resume); err != nil {
		if resume.StoragePath != "" {
			if delErr := h.store.Delete(c.UserContext(), resume.StoragePath); delErr != nil {
				h.log.Warn("failed to clean up orphaned upload", zap.String("path", resume.StoragePath), zap.Error(delErr))
			}
		}
		h.log.Error("failed to save resume", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save resume",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.DocumentResponse{
		ID:           resume.ID.String(),
		Kind:         kindResume,
		OriginalName: resume.OriginalName,
		StoragePath:  resume.StoragePath,
	})
}

// HandleCreateJobDescription handles POST /job-descriptions.
func (h *UploadHandler) HandleCreateJobDescription(c *fiber.Ctx) error {
	var req models.CreateJobDescriptionRequest
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

	extracted, err := json.Marshal(req.ExtractedData)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to encode job description")
	}

	jd := models.JobDescription{
		ID:            uuid.New(),
		UserID:        UserID(c),
		ExtractedData: datatypes.JSON(extracted),
	}
	if err := h.jdRepo.Create(c.UserContext(), &jd); err != nil {
		h.log.Error("failed to save job description", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save job description",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.DocumentResponse{
		ID:   jd.ID.String(),
		Kind: kindJobDescription,
	})
}

func (h *UploadHandler) saveFile(c *fiber.Ctx, file *multipart.FileHeader) (string, error) {
	if h.store == nil {
		return "", errors.New("document storage is not configured")
	}
	return h.store.Save(c.UserContext(), file, kindResume)
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
