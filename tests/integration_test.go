package tests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"retail_dashboard/api"
	"retail_dashboard/internal/config"
	"retail_dashboard/internal/retail"
)

const transactionsCSV = "InvoiceNo,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country\n" +
	"536365,WHITE HANGING HEART,6,2011-01-05 10:30:00,2.55,17850,United Kingdom\n" +
	"536365,GLASS STAR FROSTED,4,2011-01-05 10:30:00,3.00,17850,United Kingdom\n" +
	"536366,HAND WARMER,2,2011-01-12 14:00:00,1.85,17851,United Kingdom\n" +
	"C536367,RETURNED ITEM,-2,2011-01-12 15:00:00,4.00,12583,France\n" +
	"536368,RED WOOLLY HOTTIE,3,2011-02-03 09:20:00,4.25,12583,France\n" +
	"536369,NO CUSTOMER ROW,1,2011-02-03 09:25:00,2.00,,France\n"

const segmentsCSV = "customer_id,recency,frequency,monetary,segment\n" +
	"17850,5,34,5288.63,champions\n" +
	"17851,40,12,950.00,loyal_customers\n" +
	"12583,240,2,89.50,hibernating\n"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	txPath := filepath.Join(dir, "transactions.csv")
	segPath := filepath.Join(dir, "segments.csv")
	require.NoError(t, os.WriteFile(txPath, []byte(transactionsCSV), 0o644))
	require.NoError(t, os.WriteFile(segPath, []byte(segmentsCSV), 0o644))

	cfg := config.Default()
	cfg.TransactionsPath = txPath
	cfg.SegmentsPath = segPath

	router := gin.New()
	require.NoError(t, api.InitRoutes(router, cfg, zaptest.NewLogger(t)))
	return router
}

func get(router *gin.Engine, url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDashboardAPI_FullFlow(t *testing.T) {
	router := newTestRouter(t)

	t.Run("GET_Ping", func(t *testing.T) {
		w := get(router, "/ping")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("GET_Countries", func(t *testing.T) {
		w := get(router, "/api/countries")
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Countries []string `json:"countries"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"France", "United Kingdom"}, resp.Countries)
	})

	t.Run("GET_KPIs_DefaultSelection", func(t *testing.T) {
		// No countries parameter: the configured default (United Kingdom).
		w := get(router, "/api/kpis")
		assert.Equal(t, http.StatusOK, w.Code)

		var kpis retail.KPIReport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &kpis))
		// 6*2.55 + 4*3.00 + 2*1.85 = 31.00
		assert.True(t, kpis.TotalRevenue.Equal(decimal.RequireFromString("31.00")), "got %s", kpis.TotalRevenue)
		assert.Equal(t, 2, kpis.TotalOrders)
		assert.Equal(t, 2, kpis.UniqueCustomers)
		assert.Equal(t, int64(12), kpis.ItemsSold)
	})

	t.Run("GET_Dashboard_AllCountries", func(t *testing.T) {
		w := get(router, "/api/dashboard?countries=United+Kingdom,France")
		assert.Equal(t, http.StatusOK, w.Code)

		var report retail.DashboardReport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		// The cleaned table keeps 4 rows: the return and the missing-customer
		// row are dropped at load time.
		assert.Equal(t, 3, report.KPIs.TotalOrders)
		assert.Len(t, report.WeekdayRevenue, 7)
		assert.Equal(t, "Monday", report.WeekdayRevenue[0].Weekday)
		assert.Equal(t, "Sunday", report.WeekdayRevenue[6].Weekday)
		require.Len(t, report.MonthlyRevenue, 2)
		assert.Equal(t, "2011-01", report.MonthlyRevenue[0].Month)
	})

	t.Run("GET_Charts_EmptySelection", func(t *testing.T) {
		w := get(router, "/api/charts/monthly-revenue?countries=")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "select at least one country")
	})

	t.Run("GET_WeekdayRevenue", func(t *testing.T) {
		w := get(router, "/api/charts/weekday-revenue?countries=France")
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Points []retail.DayRevenue `json:"points"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Points, 7)
		// The only French sale is on Thursday 2011-02-03.
		assert.True(t, resp.Points[3].Revenue.Equal(decimal.RequireFromString("12.75")))
		assert.True(t, resp.Points[0].Revenue.IsZero())
	})

	t.Run("GET_SegmentDistribution", func(t *testing.T) {
		w := get(router, "/api/charts/segment-distribution")
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Pie []retail.SegmentCount `json:"pie"`
			Bar []retail.SegmentCount `json:"bar"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Pie, 3)
		assert.Equal(t, "champions", resp.Pie[0].Segment, "pie keeps file order")
		assert.Equal(t, "champions", resp.Bar[0].Segment)
		assert.Equal(t, "hibernating", resp.Bar[2].Segment, "bar follows taxonomy order")
	})

	t.Run("GET_SegmentBehavior", func(t *testing.T) {
		w := get(router, "/api/charts/segment-behavior")
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Points []retail.SegmentFrequency `json:"points"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Points, 3)

		bands := map[string]string{}
		for _, p := range resp.Points {
			bands[p.Segment] = p.Band
		}
		assert.Equal(t, retail.BandHighest, bands["champions"])
		assert.Equal(t, retail.BandMidRange, bands["loyal_customers"])
		assert.Equal(t, retail.BandLowest, bands["hibernating"])
	})

	t.Run("GET_Preview_Raw", func(t *testing.T) {
		w := get(router, "/api/preview?source=raw")
		assert.Equal(t, http.StatusOK, w.Code)

		var preview retail.RawPreview
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &preview))
		assert.Len(t, preview.Rows, 6, "raw preview keeps rows cleaning drops")
	})

	t.Run("GET_Preview_Filtered", func(t *testing.T) {
		w := get(router, "/api/preview?source=filtered&countries=France")
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Rows []retail.Transaction `json:"rows"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Rows, 1)
		assert.Equal(t, "France", resp.Rows[0].Country)
	})

	t.Run("GET_SalesPage", func(t *testing.T) {
		w := get(router, "/")
		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.True(t, strings.Contains(body, "Key Performance Indicators"))
		assert.True(t, strings.Contains(body, "United Kingdom"))
	})

	t.Run("GET_SalesPage_NoSelection", func(t *testing.T) {
		w := get(router, "/?show_raw=0")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "select at least one country")
	})

	t.Run("GET_SegmentPage", func(t *testing.T) {
		w := get(router, "/rfm")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Segment Distribution")
	})
}

func TestDashboardAPI_MissingInputFile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.TransactionsPath = filepath.Join(t.TempDir(), "nope.csv")

	router := gin.New()
	require.NoError(t, api.InitRoutes(router, cfg, zaptest.NewLogger(t)))

	w := get(router, "/api/kpis")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found")
}

func TestDashboardAPI_MalformedInputFile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	txPath := filepath.Join(dir, "transactions.csv")
	bad := "InvoiceNo,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country\n" +
		"536365,ITEM,1,not-a-date,2.00,17850,United Kingdom\n"
	require.NoError(t, os.WriteFile(txPath, []byte(bad), 0o644))

	cfg := config.Default()
	cfg.TransactionsPath = txPath

	router := gin.New()
	require.NoError(t, api.InitRoutes(router, cfg, zaptest.NewLogger(t)))

	w := get(router, "/api/kpis")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "timestamp")
}
