package report

import (
	"net/http"

	"confbook/infras/otel"
	"confbook/internal/domains/report/service"
	"confbook/shared/constant"
	"confbook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Report
	otel    otel.Otel
}

func New(service service.Report, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/reports", func(routerGroup chi.Router) {
		routerGroup.Get("/summary", handler.GetSummary)
		routerGroup.Get("/export", handler.ExportBookings)
	})
}

// GetSummary returns aggregated booking statistics.
// @Summary Get booking summary report
// @Description Retrieve booking totals by status, the monthly booking trend and per department statistics.
// @Tags Report
// @Accept json
// @Produce json
// @Success 200 {object} response.Data[dto.SummaryResponse] "Summary report"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reports/summary [get]
// @Security BearerAuth
func (handler *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSummary")
	defer scope.End()

	summary, err := handler.service.Summary(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get summary report")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Summary report retrieved successfully")

	response.WithJSON(w, http.StatusOK, summary)
}

// ExportBookings streams all bookings as a CSV file.
// @Summary Export bookings as CSV
// @Description Download every booking with user, conference, cost and approver details as a CSV attachment.
// @Tags Report
// @Accept json
// @Produce text/csv
// @Success 200 {string} string "CSV file"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reports/export [get]
// @Security BearerAuth
func (handler *Handler) ExportBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ExportBookings")
	defer scope.End()

	data, err := handler.service.ExportCSV(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to export bookings")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Bookings exported successfully by user " + user)

	w.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeCSV)
	w.Header().Set(constant.RequestHeaderContentDisposition, `attachment; filename="bookings.csv"`)
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		log.Error().Err(err).Msg("failed to write CSV response")
	}
}
