package retail

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents one cleaned sales line from the transactions file.
// The last four fields are derived at load time and never recomputed.
type Transaction struct {
	Invoice     string          `json:"invoice"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Timestamp   time.Time       `json:"timestamp"`
	CustomerID  int64           `json:"customer_id"`
	Country     string          `json:"country"`

	LineTotal decimal.Decimal `json:"line_total"`
	Month     string          `json:"month"`
	Hour      int             `json:"hour"`
	Weekday   string          `json:"weekday"`
}

// SegmentRecord is one row of the precomputed RFM segmentation file.
type SegmentRecord struct {
	CustomerID int64           `json:"customer_id"`
	Recency    float64         `json:"recency"`
	Frequency  int64           `json:"frequency"`
	Monetary   decimal.Decimal `json:"monetary"`
	Segment    string          `json:"segment"`
}

// ColumnMapping maps each canonical transaction field to the header name
// used in the source CSV. Header matching is exact and case-sensitive.
type ColumnMapping struct {
	Invoice     string `yaml:"invoice" json:"invoice"`
	Description string `yaml:"description" json:"description"`
	Quantity    string `yaml:"quantity" json:"quantity"`
	UnitPrice   string `yaml:"unit_price" json:"unit_price"`
	Timestamp   string `yaml:"timestamp" json:"timestamp"`
	CustomerID  string `yaml:"customer_id" json:"customer_id"`
	Country     string `yaml:"country" json:"country"`
}

// ClassicMapping matches the original Online Retail export
// (InvoiceNo / UnitPrice / CustomerID).
func ClassicMapping() ColumnMapping {
	return ColumnMapping{
		Invoice:     "InvoiceNo",
		Description: "Description",
		Quantity:    "Quantity",
		UnitPrice:   "UnitPrice",
		Timestamp:   "InvoiceDate",
		CustomerID:  "CustomerID",
		Country:     "Country",
	}
}

// ModernMapping matches the revised export of the same dataset
// (Invoice / Price / Customer ID).
func ModernMapping() ColumnMapping {
	return ColumnMapping{
		Invoice:     "Invoice",
		Description: "Description",
		Quantity:    "Quantity",
		UnitPrice:   "Price",
		Timestamp:   "InvoiceDate",
		CustomerID:  "Customer ID",
		Country:     "Country",
	}
}

// Fingerprint returns a stable string identifying the mapping, used as part
// of the load-cache key so the same file loaded under two schemas is cached
// separately.
func (m ColumnMapping) Fingerprint() string {
	return strings.Join([]string{
		m.Invoice, m.Description, m.Quantity, m.UnitPrice,
		m.Timestamp, m.CustomerID, m.Country,
	}, "|")
}

// WeekdayOrder is the fixed calendar order used by the weekday revenue
// chart. Aggregation output always carries exactly these keys.
var WeekdayOrder = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// SegmentOrder is the fixed taxonomy order for the ten RFM segment labels.
// Labels outside this list are not rejected; they render after the known
// ones in first-seen order.
var SegmentOrder = []string{
	"champions",
	"loyal_customers",
	"potential_loyalists",
	"new_customers",
	"promising",
	"need_attention",
	"about_to_sleep",
	"at_risk",
	"cant_lose",
	"hibernating",
}
