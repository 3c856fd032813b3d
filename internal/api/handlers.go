package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/moneyex/compliance-service/internal/compliance"
	"github.com/moneyex/compliance-service/internal/config"
	"github.com/moneyex/compliance-service/internal/domain"
	"github.com/moneyex/compliance-service/internal/pkg/logger"
	"github.com/moneyex/compliance-service/internal/reporting"
)

// Handler exposes the compliance engine over HTTP
type Handler struct {
	assessor  *compliance.ComplianceAssessor
	lifecycle *reporting.ReportLifecycleManager
	auditor   *reporting.ComplianceAuditReporter
	cfg       *config.ComplianceConfig
	log       *logger.Logger
}

// NewHandler creates the HTTP handler
func NewHandler(
	assessor *compliance.ComplianceAssessor,
	lifecycle *reporting.ReportLifecycleManager,
	auditor *reporting.ComplianceAuditReporter,
	cfg *config.ComplianceConfig,
	log *logger.Logger,
) *Handler {
	return &Handler{
		assessor:  assessor,
		lifecycle: lifecycle,
		auditor:   auditor,
		cfg:       cfg,
		log:       log.Named("api"),
	}
}

// Register mounts the API routes
func (h *Handler) Register(e *echo.Echo, jwtSecret string) {
	v1 := e.Group("/api/v1", SubmitterIdentity(jwtSecret))

	v1.POST("/assessments", h.assess)
	v1.GET("/customers/:id/risk", h.customerRisk)

	v1.POST("/reports", h.createReport)
	v1.PATCH("/reports/:id", h.updateReport)
	v1.POST("/reports/:id/review", h.markPendingReview)
	v1.POST("/reports/:id/submit", h.submitReport)
	v1.POST("/reports/:id/acknowledge", h.acknowledgeReport)
	v1.POST("/reports/:id/reject", h.rejectReport)
	v1.GET("/reports/overdue", h.overdueReports)
	v1.GET("/reports/due-soon", h.dueSoonReports)

	v1.GET("/audit", h.auditReport)
}

type assessRequest struct {
	TransactionID uuid.UUID `json:"transaction_id"`
}

func (h *Handler) assess(c echo.Context) error {
	var req assessRequest
	if err := c.Bind(&req); err != nil || req.TransactionID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "transaction_id is required")
	}

	assessment, err := h.assessor.Assess(c.Request().Context(), req.TransactionID)
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"assessment":   assessment,
		"is_compliant": assessment.IsCompliant(),
	})
}

func (h *Handler) customerRisk(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid customer id")
	}

	assessment, err := h.assessor.AssessCustomerRisk(c.Request().Context(), id)
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, assessment)
}

type createReportRequest struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
}

func (h *Handler) createReport(c echo.Context) error {
	var req createReportRequest
	if err := c.Bind(&req); err != nil || req.TransactionID == uuid.Nil || req.CustomerID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "transaction_id and customer_id are required")
	}

	report, err := h.lifecycle.Create(c.Request().Context(), req.TransactionID, req.CustomerID)
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusCreated, report)
}

func (h *Handler) updateReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid report id")
	}

	var req domain.UpdateReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	report, err := h.lifecycle.Update(c.Request().Context(), id, req)
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) markPendingReview(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid report id")
	}

	report, err := h.lifecycle.MarkPendingReview(c.Request().Context(), id)
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) submitReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid report id")
	}

	report, err := h.lifecycle.Submit(c.Request().Context(), id, Submitter(c))
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, report)
}

type acknowledgeRequest struct {
	ExternalReference string `json:"external_reference"`
}

func (h *Handler) acknowledgeReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid report id")
	}

	var req acknowledgeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	report, err := h.lifecycle.Acknowledge(c.Request().Context(), id, req.ExternalReference)
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, report)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) rejectReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid report id")
	}

	var req rejectRequest
	if err := c.Bind(&req); err != nil || req.Reason == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reason is required")
	}

	report, err := h.lifecycle.Reject(c.Request().Context(), id, req.Reason)
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) overdueReports(c echo.Context) error {
	summaries, err := h.lifecycle.Overdue(c.Request().Context())
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, summaries)
}

func (h *Handler) dueSoonReports(c echo.Context) error {
	horizon := h.cfg.DueSoonHorizon
	if raw := c.QueryParam("horizon"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid horizon")
		}
		horizon = parsed
	}

	summaries, err := h.lifecycle.DueSoon(c.Request().Context(), horizon)
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, summaries)
}

func (h *Handler) auditReport(c echo.Context) error {
	from, err := time.Parse(time.RFC3339, c.QueryParam("from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "from must be RFC3339")
	}
	to, err := time.Parse(time.RFC3339, c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "to must be RFC3339")
	}

	report, err := h.auditor.GenerateReport(c.Request().Context(), from, to)
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, report)
}

// mapError translates typed domain errors into HTTP responses
func (h *Handler) mapError(err error) error {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"error":   validation.Message,
			"missing": validation.Missing,
		})
	}

	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return echo.NewHTTPError(http.StatusNotFound, notFound.Error())
	}

	var conflict *domain.StateConflictError
	if errors.As(err, &conflict) {
		return echo.NewHTTPError(http.StatusConflict, conflict.Error())
	}

	var unavailable *domain.DependencyUnavailableError
	if errors.As(err, &unavailable) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, unavailable.Error())
	}

	h.log.Error("unhandled error", logger.ErrorField(err))
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
