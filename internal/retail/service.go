package retail

import (
	"errors"
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrNoSelection is returned when the country selection is empty. It is a
// guided stop state asking the user to pick at least one country, not a
// data error; no aggregation runs when it is returned.
var ErrNoSelection = errors.New("no countries selected")

// Frequency bands assigned by SegmentBehavior.
const (
	BandHighest  = "Highest Frequency"
	BandLowest   = "Lowest Frequency"
	BandMidRange = "Mid-Range"
)

// Service provides the filter and aggregation stages over loaded tables.
// All methods are pure functions of their arguments; the service holds no
// table state, so concurrent callers may share one instance.
type Service struct {
	logger *zap.Logger
}

// NewService creates a new Service.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// KPIReport holds the four headline scalars of the filtered table.
type KPIReport struct {
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalOrders     int             `json:"total_orders"`
	UniqueCustomers int             `json:"unique_customers"`
	ItemsSold       int64           `json:"items_sold"`
}

// MonthRevenue is one month bucket of the monthly trend chart.
type MonthRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ProductQuantity is one bar of the top-products chart.
type ProductQuantity struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
}

// HourRevenue is one bucket of the hour-of-day chart. Hours with no
// transactions in the filtered set are absent, not zero.
type HourRevenue struct {
	Hour    int             `json:"hour"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DayRevenue is one bucket of the weekday chart.
type DayRevenue struct {
	Weekday string          `json:"weekday"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SegmentCount is one segment's share of the customer base.
type SegmentCount struct {
	Segment string  `json:"segment"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// SegmentFrequency is one segment's mean purchase frequency, banded
// against the other segments.
type SegmentFrequency struct {
	Segment       string  `json:"segment"`
	MeanFrequency float64 `json:"mean_frequency"`
	Band          string  `json:"band"`
}

// DashboardReport bundles everything the sales dashboard renders.
type DashboardReport struct {
	Countries      []string          `json:"countries"`
	KPIs           KPIReport         `json:"kpis"`
	MonthlyRevenue []MonthRevenue    `json:"monthly_revenue"`
	TopProducts    []ProductQuantity `json:"top_products"`
	HourlyRevenue  []HourRevenue     `json:"hourly_revenue"`
	WeekdayRevenue []DayRevenue      `json:"weekday_revenue"`
}

// SegmentReport bundles the RFM overlay charts. Distribution keeps
// group-by (first-seen) order for the pie; BarDistribution and Behavior
// follow the fixed taxonomy order.
type SegmentReport struct {
	Distribution    []SegmentCount     `json:"distribution"`
	BarDistribution []SegmentCount     `json:"bar_distribution"`
	Behavior        []SegmentFrequency `json:"behavior"`
}

// FilterByCountry returns the subset of rows whose country is in countries.
func (s *Service) FilterByCountry(rows []Transaction, countries []string) []Transaction {
	accept := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		accept[c] = struct{}{}
	}

	out := make([]Transaction, 0, len(rows))
	for _, r := range rows {
		if _, ok := accept[r.Country]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Countries returns the sorted distinct country values of rows, for the
// country multi-select.
func (s *Service) Countries(rows []Transaction) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range rows {
		if _, ok := seen[r.Country]; !ok {
			seen[r.Country] = struct{}{}
			out = append(out, r.Country)
		}
	}
	sort.Strings(out)
	return out
}

// KPIs computes the four headline scalars in a single pass.
func (s *Service) KPIs(rows []Transaction) KPIReport {
	revenue := decimal.Zero
	invoices := map[string]struct{}{}
	customers := map[int64]struct{}{}
	var items int64

	for _, r := range rows {
		revenue = revenue.Add(r.LineTotal)
		invoices[r.Invoice] = struct{}{}
		customers[r.CustomerID] = struct{}{}
		items += r.Quantity
	}

	return KPIReport{
		TotalRevenue:    revenue,
		TotalOrders:     len(invoices),
		UniqueCustomers: len(customers),
		ItemsSold:       items,
	}
}

// MonthlyRevenue sums line totals by month bucket, ascending by bucket
// string ("2006-01" sorts chronologically).
func (s *Service) MonthlyRevenue(rows []Transaction) []MonthRevenue {
	sums := map[string]decimal.Decimal{}
	for _, r := range rows {
		sums[r.Month] = sums[r.Month].Add(r.LineTotal)
	}

	months := make([]string, 0, len(sums))
	for m := range sums {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]MonthRevenue, 0, len(months))
	for _, m := range months {
		out = append(out, MonthRevenue{Month: m, Revenue: sums[m]})
	}
	return out
}

// TopProducts sums quantity by product description and keeps the n largest,
// descending. Ties are broken by first-seen input order.
func (s *Service) TopProducts(rows []Transaction, n int) []ProductQuantity {
	sums := map[string]int64{}
	var order []string
	for _, r := range rows {
		if _, ok := sums[r.Description]; !ok {
			order = append(order, r.Description)
		}
		sums[r.Description] += r.Quantity
	}

	out := make([]ProductQuantity, 0, len(order))
	for _, desc := range order {
		out = append(out, ProductQuantity{Description: desc, Quantity: sums[desc]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Quantity > out[j].Quantity
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// HourlyRevenue sums line totals by hour of day, ascending. Hours without
// transactions are omitted rather than zero-filled.
func (s *Service) HourlyRevenue(rows []Transaction) []HourRevenue {
	sums := map[int]decimal.Decimal{}
	for _, r := range rows {
		sums[r.Hour] = sums[r.Hour].Add(r.LineTotal)
	}

	hours := make([]int, 0, len(sums))
	for h := range sums {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	out := make([]HourRevenue, 0, len(hours))
	for _, h := range hours {
		out = append(out, HourRevenue{Hour: h, Revenue: sums[h]})
	}
	return out
}

// WeekdayRevenue sums line totals by weekday name and emits exactly the
// seven calendar days Monday..Sunday in order, zero-filled.
func (s *Service) WeekdayRevenue(rows []Transaction) []DayRevenue {
	sums := map[string]decimal.Decimal{}
	for _, r := range rows {
		sums[r.Weekday] = sums[r.Weekday].Add(r.LineTotal)
	}

	out := make([]DayRevenue, 0, len(WeekdayOrder))
	for _, day := range WeekdayOrder {
		out = append(out, DayRevenue{Weekday: day, Revenue: sums[day]})
	}
	return out
}

// SegmentDistribution counts customers per segment label in first-seen
// order, with each count also expressed as a percentage of all rows.
func (s *Service) SegmentDistribution(segs []SegmentRecord) []SegmentCount {
	counts := map[string]int{}
	var order []string
	for _, r := range segs {
		if _, ok := counts[r.Segment]; !ok {
			order = append(order, r.Segment)
		}
		counts[r.Segment]++
	}

	out := make([]SegmentCount, 0, len(order))
	for _, label := range order {
		pct := 0.0
		if len(segs) > 0 {
			pct = math.Round(float64(counts[label])/float64(len(segs))*10000) / 100
		}
		out = append(out, SegmentCount{Segment: label, Count: counts[label], Percent: pct})
	}
	return out
}

// SegmentBehavior computes the mean purchase frequency per segment in fixed
// taxonomy order, then bands each segment: all segments tied for the single
// highest mean go to the Highest Frequency band, all tied for the lowest to
// Lowest Frequency, everything else to Mid-Range.
func (s *Service) SegmentBehavior(segs []SegmentRecord) []SegmentFrequency {
	sums := map[string]int64{}
	counts := map[string]int{}
	var order []string
	for _, r := range segs {
		if _, ok := counts[r.Segment]; !ok {
			order = append(order, r.Segment)
		}
		sums[r.Segment] += r.Frequency
		counts[r.Segment]++
	}

	out := make([]SegmentFrequency, 0, len(order))
	for _, label := range reorderByTaxonomy(order) {
		out = append(out, SegmentFrequency{
			Segment:       label,
			MeanFrequency: float64(sums[label]) / float64(counts[label]),
		})
	}
	if len(out) == 0 {
		return out
	}

	highest, lowest := out[0].MeanFrequency, out[0].MeanFrequency
	for _, f := range out[1:] {
		highest = math.Max(highest, f.MeanFrequency)
		lowest = math.Min(lowest, f.MeanFrequency)
	}
	for i := range out {
		switch {
		case out[i].MeanFrequency == highest:
			out[i].Band = BandHighest
		case out[i].MeanFrequency == lowest:
			out[i].Band = BandLowest
		default:
			out[i].Band = BandMidRange
		}
	}
	return out
}

// Dashboard runs the full sales pipeline for one country selection. An
// empty selection returns ErrNoSelection before any aggregation is invoked.
func (s *Service) Dashboard(rows []Transaction, countries []string) (*DashboardReport, error) {
	if len(countries) == 0 {
		return nil, ErrNoSelection
	}

	filtered := s.FilterByCountry(rows, countries)
	report := &DashboardReport{
		Countries:      countries,
		KPIs:           s.KPIs(filtered),
		MonthlyRevenue: s.MonthlyRevenue(filtered),
		TopProducts:    s.TopProducts(filtered, 10),
		HourlyRevenue:  s.HourlyRevenue(filtered),
		WeekdayRevenue: s.WeekdayRevenue(filtered),
	}

	s.logger.Info("dashboard computed",
		zap.Strings("countries", countries),
		zap.Int("rows", len(filtered)),
		zap.Int("orders", report.KPIs.TotalOrders),
	)
	return report, nil
}

// SegmentDashboard runs the RFM overlay pipeline.
func (s *Service) SegmentDashboard(segs []SegmentRecord) *SegmentReport {
	dist := s.SegmentDistribution(segs)

	bar := make([]SegmentCount, len(dist))
	copy(bar, dist)
	byLabel := make(map[string]int, len(bar))
	labels := make([]string, len(bar))
	for i, c := range bar {
		byLabel[c.Segment] = i
		labels[i] = c.Segment
	}
	ordered := make([]SegmentCount, 0, len(bar))
	for _, label := range reorderByTaxonomy(labels) {
		ordered = append(ordered, bar[byLabel[label]])
	}

	report := &SegmentReport{
		Distribution:    dist,
		BarDistribution: ordered,
		Behavior:        s.SegmentBehavior(segs),
	}
	s.logger.Info("segment dashboard computed", zap.Int("segments", len(dist)))
	return report
}

// reorderByTaxonomy returns labels with the known taxonomy segments first,
// in SegmentOrder, followed by any unknown labels in their original order.
func reorderByTaxonomy(labels []string) []string {
	present := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		present[l] = struct{}{}
	}

	out := make([]string, 0, len(labels))
	for _, l := range SegmentOrder {
		if _, ok := present[l]; ok {
			out = append(out, l)
			delete(present, l)
		}
	}
	for _, l := range labels {
		if _, ok := present[l]; ok {
			out = append(out, l)
			delete(present, l)
		}
	}
	return out
}
