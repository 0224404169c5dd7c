package api

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"retail_dashboard/internal/retail"
)

// chartRow is one bar of a server-rendered chart: a label, a display
// value, and a width in percent of the largest bar.
type chartRow struct {
	Label string
	Value string
	Width int
	Class string
}

// kpiTiles holds the four KPI scalars preformatted for display.
type kpiTiles struct {
	Revenue   string
	Orders    string
	Customers string
	Items     string
}

type salesPage struct {
	AllCountries  []string
	SelectedSet   map[string]bool
	AllSelected   bool
	NeedSelection bool
	Err           string

	KPIs           *kpiTiles
	Monthly        []chartRow
	TopProducts    []chartRow
	Hourly         []chartRow
	Weekday        []chartRow
	ShowFiltered   bool
	ShowRaw        bool
	FilteredRows   []retail.Transaction
	RawPreview     *retail.RawPreview
}

type segmentPage struct {
	Err          string
	Distribution []retail.SegmentCount
	Bar          []chartRow
	Behavior     []chartRow
}

// handleSalesPage renders the sales dashboard: filters, KPI tiles, four
// chart panels and the two table previews.
func (h *dashboardHandler) handleSalesPage(ctx *gin.Context) {
	page := salesPage{SelectedSet: map[string]bool{}}

	rows, err := h.cache.Load(h.cfg.TransactionsPath, h.mapping)
	if err != nil {
		page.Err = err.Error()
		h.renderPage(ctx, salesTpl, page)
		return
	}
	page.AllCountries = h.service.Countries(rows)

	selected := h.pageSelection(ctx, page.AllCountries)
	for _, c := range selected {
		page.SelectedSet[c] = true
	}
	page.AllSelected = len(selected) == len(page.AllCountries) && len(selected) > 0

	report, err := h.service.Dashboard(rows, selected)
	if err != nil {
		// Only ErrNoSelection reaches here; the table itself loaded.
		page.NeedSelection = true
		h.renderPage(ctx, salesTpl, page)
		return
	}

	page.KPIs = &kpiTiles{
		Revenue:   "£" + report.KPIs.TotalRevenue.StringFixed(2),
		Orders:    formatInt(int64(report.KPIs.TotalOrders)),
		Customers: formatInt(int64(report.KPIs.UniqueCustomers)),
		Items:     formatInt(report.KPIs.ItemsSold),
	}
	page.Monthly = monthlyRows(report.MonthlyRevenue)
	page.TopProducts = productRows(report.TopProducts)
	page.Hourly = hourlyRows(report.HourlyRevenue)
	page.Weekday = weekdayRows(report.WeekdayRevenue)

	if page.ShowFiltered = ctx.Query("show_filtered") == "1"; page.ShowFiltered {
		filtered := h.service.FilterByCountry(rows, selected)
		if len(filtered) > h.cfg.PreviewRows {
			filtered = filtered[:h.cfg.PreviewRows]
		}
		page.FilteredRows = filtered
	}
	if page.ShowRaw = ctx.Query("show_raw") == "1"; page.ShowRaw {
		preview, err := retail.LoadRawPreview(h.cfg.TransactionsPath, h.cfg.PreviewRows)
		if err != nil {
			page.Err = err.Error()
		} else {
			page.RawPreview = preview
		}
	}

	h.renderPage(ctx, salesTpl, page)
}

// handleSegmentPage renders the RFM segmentation dashboard.
func (h *dashboardHandler) handleSegmentPage(ctx *gin.Context) {
	page := segmentPage{}

	segs, err := retail.LoadSegments(h.cfg.SegmentsPath)
	if err != nil {
		page.Err = err.Error()
		h.renderPage(ctx, segmentTpl, page)
		return
	}

	report := h.service.SegmentDashboard(segs)
	page.Distribution = report.Distribution
	page.Bar = distributionRows(report.BarDistribution)
	page.Behavior = behaviorRows(report.Behavior)

	h.renderPage(ctx, segmentTpl, page)
}

// pageSelection resolves the country selection for the HTML page: the
// configured defaults on first load, every country when the select-all box
// is checked, otherwise whatever the multi-select sent.
func (h *dashboardHandler) pageSelection(ctx *gin.Context, all []string) []string {
	if ctx.Request.URL.RawQuery == "" {
		return h.cfg.DefaultCountries
	}
	if ctx.Query("all") == "1" {
		return all
	}
	return ctx.QueryArray("country")
}

func (h *dashboardHandler) renderPage(ctx *gin.Context, tpl *template.Template, data any) {
	ctx.Header("Content-Type", "text/html; charset=utf-8")
	ctx.Status(http.StatusOK)
	if err := tpl.Execute(ctx.Writer, data); err != nil {
		h.logger.Error("failed to render page", zap.Error(err))
	}
}

func monthlyRows(points []retail.MonthRevenue) []chartRow {
	var maxV float64
	for _, p := range points {
		if v := p.Revenue.InexactFloat64(); v > maxV {
			maxV = v
		}
	}
	out := make([]chartRow, 0, len(points))
	for _, p := range points {
		out = append(out, chartRow{
			Label: p.Month,
			Value: "£" + p.Revenue.StringFixed(2),
			Width: barWidth(p.Revenue.InexactFloat64(), maxV),
		})
	}
	return out
}

func productRows(points []retail.ProductQuantity) []chartRow {
	var maxV int64
	for _, p := range points {
		if p.Quantity > maxV {
			maxV = p.Quantity
		}
	}
	out := make([]chartRow, 0, len(points))
	for _, p := range points {
		out = append(out, chartRow{
			Label: p.Description,
			Value: formatInt(p.Quantity),
			Width: barWidth(float64(p.Quantity), float64(maxV)),
		})
	}
	return out
}

func hourlyRows(points []retail.HourRevenue) []chartRow {
	var maxV float64
	for _, p := range points {
		if v := p.Revenue.InexactFloat64(); v > maxV {
			maxV = v
		}
	}
	out := make([]chartRow, 0, len(points))
	for _, p := range points {
		out = append(out, chartRow{
			Label: formatInt(int64(p.Hour)) + ":00",
			Value: "£" + p.Revenue.StringFixed(2),
			Width: barWidth(p.Revenue.InexactFloat64(), maxV),
		})
	}
	return out
}

func weekdayRows(points []retail.DayRevenue) []chartRow {
	var maxV float64
	for _, p := range points {
		if v := p.Revenue.InexactFloat64(); v > maxV {
			maxV = v
		}
	}
	out := make([]chartRow, 0, len(points))
	for _, p := range points {
		out = append(out, chartRow{
			Label: p.Weekday,
			Value: "£" + p.Revenue.StringFixed(2),
			Width: barWidth(p.Revenue.InexactFloat64(), maxV),
		})
	}
	return out
}

func distributionRows(points []retail.SegmentCount) []chartRow {
	var maxV int
	for _, p := range points {
		if p.Count > maxV {
			maxV = p.Count
		}
	}
	out := make([]chartRow, 0, len(points))
	for _, p := range points {
		out = append(out, chartRow{
			Label: p.Segment,
			Value: formatInt(int64(p.Count)),
			Width: barWidth(float64(p.Count), float64(maxV)),
		})
	}
	return out
}

func behaviorRows(points []retail.SegmentFrequency) []chartRow {
	classes := map[string]string{
		retail.BandHighest:  "hi",
		retail.BandLowest:   "lo",
		retail.BandMidRange: "mid",
	}
	var maxV float64
	for _, p := range points {
		if p.MeanFrequency > maxV {
			maxV = p.MeanFrequency
		}
	}
	out := make([]chartRow, 0, len(points))
	for _, p := range points {
		out = append(out, chartRow{
			Label: p.Segment,
			Value: formatFloat(p.MeanFrequency),
			Width: barWidth(p.MeanFrequency, maxV),
			Class: classes[p.Band],
		})
	}
	return out
}

func barWidth(v, max float64) int {
	if max <= 0 {
		return 0
	}
	w := int(v / max * 100)
	if w < 1 && v > 0 {
		w = 1
	}
	return w
}
