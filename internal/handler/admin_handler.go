package handler

import (
	"gradebook/internal/domain"
	"gradebook/internal/dto"
	"gradebook/internal/service"
	"gradebook/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles the teacher-side endpoints: exam catalog management,
// direct score entry, the class matrix, submission log review, roster and
// snapshot import/export, and result notifications.
type AdminHandler struct {
	adminService  service.AdminService
	notifyService service.NotifyService
	validator     *validation.Validator
}

// NewAdminHandler creates a new AdminHandler instance
func NewAdminHandler(adminService service.AdminService, notifyService service.NotifyService) *AdminHandler {
	return &AdminHandler{
		adminService:  adminService,
		notifyService: notifyService,
		validator:     validation.NewValidator(),
	}
}

// CreateExam godoc
// @Summary Create an exam
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.CreateExamRequest true "Exam definition"
// @Success 201 {object} dto.ExamResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /admin/exams [post]
func (h *AdminHandler) CreateExam(c *fiber.Ctx) error {
	var req dto.CreateExamRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateExamName(req.Name); len(errs) > 0 {
		return errs
	}

	exam, err := h.adminService.CreateExam(c.Context(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(exam)
}

// ListExams godoc
// @Summary List the exam catalog
// @Tags admin
// @Produce json
// @Success 200 {array} dto.ExamResponse
// @Security BearerAuth
// @Router /admin/exams [get]
func (h *AdminHandler) ListExams(c *fiber.Ctx) error {
	exams, err := h.adminService.ListExams(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(exams)
}

// SetMandatoryExams godoc
// @Summary Replace the mandatory exam set
// @Tags admin
// @Accept json
// @Param request body dto.SetMandatoryRequest true "Mandatory exam IDs"
// @Success 204
// @Security BearerAuth
// @Router /admin/exams/mandatory [put]
func (h *AdminHandler) SetMandatoryExams(c *fiber.Ctx) error {
	var req dto.SetMandatoryRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if err := h.adminService.SetMandatoryExams(c.Context(), req.ExamIDs); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetExamOpen godoc
// @Summary Open or close an exam for submissions
// @Tags admin
// @Accept json
// @Param examId path string true "Exam ID"
// @Param request body dto.SetOpenRequest true "Open flag"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /admin/exams/{examId}/open [put]
func (h *AdminHandler) SetExamOpen(c *fiber.Ctx) error {
	var req dto.SetOpenRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if err := h.adminService.SetExamOpen(c.Context(), c.Params("examId"), req.Open); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetExamDeadline godoc
// @Summary Set or clear an exam's submission deadline
// @Tags admin
// @Accept json
// @Param examId path string true "Exam ID"
// @Param request body dto.SetDeadlineRequest true "Deadline, null to clear"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /admin/exams/{examId}/deadline [put]
func (h *AdminHandler) SetExamDeadline(c *fiber.Ctx) error {
	var req dto.SetDeadlineRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if err := h.adminService.SetExamDeadline(c.Context(), c.Params("examId"), req.Deadline); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteExam godoc
// @Summary Delete an exam and its scores and submission history
// @Tags admin
// @Param examId path string true "Exam ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /admin/exams/{examId} [delete]
func (h *AdminHandler) DeleteExam(c *fiber.Ctx) error {
	if err := h.adminService.DeleteExam(c.Context(), c.Params("examId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpsertScore godoc
// @Summary Record or overwrite a student's score
// @Tags admin
// @Accept json
// @Param request body dto.UpsertScoreRequest true "Score entry"
// @Success 204
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /admin/scores [put]
func (h *AdminHandler) UpsertScore(c *fiber.Ctx) error {
	var req dto.UpsertScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateScoreValue(req.Value); len(errs) > 0 {
		return errs
	}
	if err := h.adminService.UpsertScore(c.Context(), &req); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetScoreMatrix godoc
// @Summary Get the class score matrix
// @Description Every student against every exam, with per-student averages
// @Tags admin
// @Produce json
// @Success 200 {object} dto.ScoreMatrixResponse
// @Security BearerAuth
// @Router /admin/scores/matrix [get]
func (h *AdminHandler) GetScoreMatrix(c *fiber.Ctx) error {
	matrix, err := h.adminService.GetScoreMatrix(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(matrix)
}

// ListSubmissionLogs godoc
// @Summary Review submission logs
// @Tags admin
// @Produce json
// @Param user_id query string false "Filter by student"
// @Param limit query int false "Maximum rows" default(50)
// @Success 200 {array} dto.SubmissionLogResponse
// @Security BearerAuth
// @Router /admin/submissions [get]
func (h *AdminHandler) ListSubmissionLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	logs, err := h.adminService.ListRecentLogs(c.Context(), c.Query("user_id"), limit)
	if err != nil {
		return err
	}
	return c.JSON(logs)
}

// ImportRoster godoc
// @Summary Import the class roster
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.RosterImportRequest true "Roster entries"
// @Success 200 {object} map[string]int
// @Security BearerAuth
// @Router /admin/roster [post]
func (h *AdminHandler) ImportRoster(c *fiber.Ctx) error {
	var req dto.RosterImportRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	changed, err := h.adminService.ImportRoster(c.Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"changed": changed})
}

// ExportBundle godoc
// @Summary Export the gradebook snapshot
// @Tags admin
// @Produce json
// @Success 200 {object} dto.ExportBundle
// @Security BearerAuth
// @Router /admin/export [get]
func (h *AdminHandler) ExportBundle(c *fiber.Ctx) error {
	bundle, err := h.adminService.ExportBundle(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(bundle)
}

// ImportBundle godoc
// @Summary Import a gradebook snapshot
// @Tags admin
// @Accept json
// @Param request body dto.ExportBundle true "Snapshot"
// @Success 204
// @Failure 400 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /admin/import [post]
func (h *AdminHandler) ImportBundle(c *fiber.Ctx) error {
	var bundle dto.ExportBundle
	if err := c.BodyParser(&bundle); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if err := h.adminService.ImportBundle(c.Context(), &bundle); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// NotifyResults godoc
// @Summary Email result summaries
// @Description Sends each listed student (or the whole roster) their report card
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.NotifyRequest true "Target students, empty for all"
// @Success 200 {object} dto.NotifyResponse
// @Security BearerAuth
// @Router /admin/notify [post]
func (h *AdminHandler) NotifyResults(c *fiber.Ctx) error {
	var req dto.NotifyRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	resp, err := h.notifyService.NotifyResults(c.Context(), req.UserIDs)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
