package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	apierrors "ctrlreport/internal/errors"
)

// ReportHandler handles report download HTTP requests
type ReportHandler struct {
	service      ReportServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "report")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{orgID}", h.DownloadControlsReport)
	return r
}

// DownloadControlsReport handles GET /report/{orgID}: it runs the full
// fetch-and-render pipeline and returns the document as a downloadable
// PDF attachment.
func (h *ReportHandler) DownloadControlsReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgID := chi.URLParam(r, "orgID")
	if err := h.validate.Var(orgID, "required,max=128,printascii"); err != nil {
		h.logger.WarnContext(ctx, "invalid organization identifier",
			slog.String("organization_id", orgID))
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("orgID", "Invalid organization identifier"))
		return
	}

	h.logger.InfoContext(ctx, "report download requested",
		slog.String("organization_id", orgID))

	pdf, err := h.service.GenerateControlsReport(ctx, orgID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("controls_%s.pdf", orgID)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))

	// ServeContent handles range requests over the in-memory document.
	http.ServeContent(w, r, filename, time.Time{}, bytes.NewReader(pdf))
}
