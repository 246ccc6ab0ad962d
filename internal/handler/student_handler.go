package handler

import (
	"io"
	"strconv"

	"gradebook/internal/domain"
	"gradebook/internal/dto"
	"gradebook/internal/logger"
	"gradebook/internal/middleware"
	"gradebook/internal/service"
	"gradebook/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StudentHandler handles the student-facing endpoints: the report card, the
// proof-of-score upload and the student's own attempt history.
type StudentHandler struct {
	reportService     service.ReportService
	submissionService service.SubmissionService
	validator         *validation.Validator
}

// NewStudentHandler creates a new StudentHandler instance
func NewStudentHandler(reportService service.ReportService, submissionService service.SubmissionService) *StudentHandler {
	return &StudentHandler{
		reportService:     reportService,
		submissionService: submissionService,
		validator:         validation.NewValidator(),
	}
}

// GetMyReport godoc
// @Summary Get my report card
// @Description Returns the authenticated student's report card with the computed average
// @Tags report
// @Produce json
// @Success 200 {object} dto.ReportResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /me/report [get]
func (h *StudentHandler) GetMyReport(c *fiber.Ctx) error {
	userID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		return domain.NewUnauthorizedError("authentication required")
	}

	report, err := h.reportService.GetStudentReport(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// SubmitScore godoc
// @Summary Submit proof of score
// @Description Uploads a photo of a graded exam; an AI classifier adjudicates the claim
// @Tags submission
// @Accept multipart/form-data
// @Produce json
// @Param exam_type_id formData string true "Exam ID"
// @Param claimed_score formData number true "Claimed score"
// @Param challenge_token formData string true "Anti-automation challenge token"
// @Param evidence formData file true "Photo of the graded exam"
// @Success 200 {object} dto.SubmissionResultResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /me/submissions [post]
func (h *StudentHandler) SubmitScore(c *fiber.Ctx) error {
	userID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		return domain.NewUnauthorizedError("authentication required")
	}

	claimedScore, err := strconv.ParseFloat(c.FormValue("claimed_score"), 64)
	if err != nil {
		return domain.ValidationErrors{domain.NewInvalidFormatError("claimed_score", c.FormValue("claimed_score"))}
	}
	req := &dto.SubmitScoreRequest{
		ExamTypeID:     c.FormValue("exam_type_id"),
		ClaimedScore:   claimedScore,
		ChallengeToken: c.FormValue("challenge_token"),
	}

	fileHeader, err := c.FormFile("evidence")
	if err != nil {
		return domain.ValidationErrors{domain.NewMissingFieldError("evidence")}
	}
	mimeType := fileHeader.Header.Get("Content-Type")

	if errs := h.validator.ValidateSubmitRequest(req.ExamTypeID, req.ClaimedScore, mimeType, int(fileHeader.Size)); len(errs) > 0 {
		return errs
	}

	file, err := fileHeader.Open()
	if err != nil {
		return domain.NewInternalError(err)
	}
	defer file.Close()
	image, err := io.ReadAll(file)
	if err != nil {
		return domain.NewInternalError(err)
	}

	evidence := domain.Evidence{
		Image:        image,
		MimeType:     mimeType,
		ClaimedScore: req.ClaimedScore,
	}

	result, err := h.submissionService.Submit(c.Context(), userID, req, evidence, c.IP())
	if err != nil {
		return err
	}

	logger.Get().Info("submission handled",
		zap.String("user_id", userID),
		zap.String("outcome", result.Outcome))
	return c.JSON(result)
}

// GetSubmissionState godoc
// @Summary Get my submission state for one exam
// @Description Returns attempt count, status and whether another submission is allowed
// @Tags submission
// @Produce json
// @Param examId path string true "Exam ID"
// @Success 200 {object} dto.SubmissionStateResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /me/submissions/{examId} [get]
func (h *StudentHandler) GetSubmissionState(c *fiber.Ctx) error {
	userID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		return domain.NewUnauthorizedError("authentication required")
	}

	state, err := h.submissionService.GetPairState(c.Context(), userID, c.Params("examId"))
	if err != nil {
		return err
	}
	return c.JSON(state)
}

// GetMyLogs godoc
// @Summary Get my submission history
// @Description Returns the student's recent submission attempts, newest first
// @Tags submission
// @Produce json
// @Param limit query int false "Maximum rows" default(20)
// @Success 200 {array} dto.SubmissionLogResponse
// @Security BearerAuth
// @Router /me/submissions [get]
func (h *StudentHandler) GetMyLogs(c *fiber.Ctx) error {
	userID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		return domain.NewUnauthorizedError("authentication required")
	}

	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	logs, err := h.submissionService.ListUserLogs(c.Context(), userID, limit)
	if err != nil {
		return err
	}
	return c.JSON(logs)
}
