package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"retail_dashboard/internal/config"
	"retail_dashboard/internal/retail"
)

// dashboardHandler holds the load cache and aggregation service and
// implements the HTTP surface of both dashboards.
type dashboardHandler struct {
	cache   *retail.LoadCache
	service *retail.Service
	cfg     config.Config
	mapping retail.ColumnMapping
	logger  *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler. The config must have
// passed Validate, so the column mapping is resolvable.
func NewDashboardHandler(cache *retail.LoadCache, service *retail.Service, cfg config.Config, logger *zap.Logger) (*dashboardHandler, error) {
	mapping, err := cfg.Mapping()
	if err != nil {
		return nil, err
	}
	return &dashboardHandler{
		cache:   cache,
		service: service,
		cfg:     cfg,
		mapping: mapping,
		logger:  logger,
	}, nil
}

// loadTable fetches the cleaned transaction table through the memo cache.
// On failure it writes the error response and returns false.
func (h *dashboardHandler) loadTable(ctx *gin.Context) ([]retail.Transaction, bool) {
	rows, err := h.cache.Load(h.cfg.TransactionsPath, h.mapping)
	if err != nil {
		h.respondError(ctx, err)
		return nil, false
	}
	return rows, true
}

// selectedCountries resolves the country selection from the "countries"
// query parameter (comma-separated). A missing parameter means the
// configured default selection; a present-but-empty one is an empty
// selection, which downstream treats as the guided stop state.
func (h *dashboardHandler) selectedCountries(ctx *gin.Context) []string {
	raw, ok := ctx.GetQuery("countries")
	if !ok {
		return h.cfg.DefaultCountries
	}
	var out []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func (h *dashboardHandler) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, retail.ErrInputNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, retail.ErrMalformedInput):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, retail.ErrNoSelection):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "select at least one country to view the dashboard",
		})
	default:
		h.logger.Error("request failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// handleCountries handles GET /api/countries.
func (h *dashboardHandler) handleCountries(ctx *gin.Context) {
	rows, ok := h.loadTable(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"countries": h.service.Countries(rows)})
}

// handleDashboard handles GET /api/dashboard: the full sales report for
// one country selection.
func (h *dashboardHandler) handleDashboard(ctx *gin.Context) {
	rows, ok := h.loadTable(ctx)
	if !ok {
		return
	}
	report, err := h.service.Dashboard(rows, h.selectedCountries(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, report)
}

// handleKPIs handles GET /api/kpis.
func (h *dashboardHandler) handleKPIs(ctx *gin.Context) {
	filtered, ok := h.loadFiltered(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, h.service.KPIs(filtered))
}

// handleMonthlyRevenue handles GET /api/charts/monthly-revenue.
func (h *dashboardHandler) handleMonthlyRevenue(ctx *gin.Context) {
	filtered, ok := h.loadFiltered(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"points": h.service.MonthlyRevenue(filtered)})
}

// handleTopProducts handles GET /api/charts/top-products.
func (h *dashboardHandler) handleTopProducts(ctx *gin.Context) {
	filtered, ok := h.loadFiltered(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"points": h.service.TopProducts(filtered, 10)})
}

// handleHourlyRevenue handles GET /api/charts/hourly-revenue.
func (h *dashboardHandler) handleHourlyRevenue(ctx *gin.Context) {
	filtered, ok := h.loadFiltered(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"points": h.service.HourlyRevenue(filtered)})
}

// handleWeekdayRevenue handles GET /api/charts/weekday-revenue.
func (h *dashboardHandler) handleWeekdayRevenue(ctx *gin.Context) {
	filtered, ok := h.loadFiltered(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"points": h.service.WeekdayRevenue(filtered)})
}

// loadFiltered combines table load, country selection and the filter stage,
// short-circuiting on the empty-selection stop state.
func (h *dashboardHandler) loadFiltered(ctx *gin.Context) ([]retail.Transaction, bool) {
	rows, ok := h.loadTable(ctx)
	if !ok {
		return nil, false
	}
	countries := h.selectedCountries(ctx)
	if len(countries) == 0 {
		h.respondError(ctx, retail.ErrNoSelection)
		return nil, false
	}
	return h.service.FilterByCountry(rows, countries), true
}

// handleSegmentDistribution handles GET /api/charts/segment-distribution.
// The pie keeps group-by order; the bar follows the fixed taxonomy order.
func (h *dashboardHandler) handleSegmentDistribution(ctx *gin.Context) {
	segs, err := retail.LoadSegments(h.cfg.SegmentsPath)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	report := h.service.SegmentDashboard(segs)
	ctx.JSON(http.StatusOK, gin.H{
		"pie": report.Distribution,
		"bar": report.BarDistribution,
	})
}

// handleSegmentBehavior handles GET /api/charts/segment-behavior.
func (h *dashboardHandler) handleSegmentBehavior(ctx *gin.Context) {
	segs, err := retail.LoadSegments(h.cfg.SegmentsPath)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"points": h.service.SegmentBehavior(segs)})
}

// handlePreview handles GET /api/preview?source=filtered|raw: the first
// preview_rows rows of the filtered table, or of the raw file before any
// cleaning.
func (h *dashboardHandler) handlePreview(ctx *gin.Context) {
	switch source := ctx.DefaultQuery("source", "filtered"); source {
	case "filtered":
		filtered, ok := h.loadFiltered(ctx)
		if !ok {
			return
		}
		if len(filtered) > h.cfg.PreviewRows {
			filtered = filtered[:h.cfg.PreviewRows]
		}
		ctx.JSON(http.StatusOK, gin.H{"rows": filtered})
	case "raw":
		preview, err := retail.LoadRawPreview(h.cfg.TransactionsPath, h.cfg.PreviewRows)
		if err != nil {
			h.respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, preview)
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "source must be filtered or raw"})
	}
}
