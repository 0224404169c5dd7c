package api

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"
)

// formatInt renders n with thousands separators for the KPI tiles.
func formatInt(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

const pageStyle = `
body{font-family:system-ui,Segoe UI,Roboto,Inter,Arial;background:#0b1020;color:#e8ecff;margin:0;padding:20px}
.card{background:#111837;border:1px solid #203063;border-radius:14px;padding:16px;margin:12px 0}
h1{margin:0 0 10px 0;text-align:center} .muted{color:#9aa7cf} table{width:100%;border-collapse:collapse}
th,td{border-bottom:1px solid #22305f;padding:8px;text-align:left;vertical-align:top}
.badge{display:inline-block;background:#1b2a59;padding:6px 10px;border-radius:8px;margin-right:6px}
.bar{background:#7aa2ff;height:14px;border-radius:4px;display:inline-block}
.bar.hi{background:#59d499} .bar.lo{background:#ff7a7a} .bar.mid{background:#7aa2ff}
.row{display:grid;grid-template-columns:180px 1fr 120px;gap:8px;align-items:center;margin:4px 0}
.warn{background:#4a3517;border:1px solid #8a6d2f;border-radius:10px;padding:12px}
button{background:#7aa2ff;color:#04102a;border:none;padding:8px 12px;border-radius:10px;cursor:pointer}
select{background:#1b2a59;color:#e8ecff;border:1px solid #203063;border-radius:8px;padding:6px;min-width:240px}
a{color:#7aa2ff}
`

var salesTpl = template.Must(template.New("sales").Parse(`
<!doctype html><html><head>
<meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1">
<title>Online Retail Sales Dashboard</title>
<style>` + pageStyle + `</style>
</head><body>
<h1>&#128722; Online Retail Sales Dashboard</h1>
<p class="muted" style="text-align:center">Sales trends, top products and regional performance. <a href="/rfm">RFM segmentation &rarr;</a></p>

{{if .Err}}<div class="card warn">{{.Err}}</div>{{end}}

{{if .AllCountries}}
<div class="card">
  <h3>&#128202; Adjust Filters</h3>
  <form method="GET" action="/">
    <label><input type="checkbox" name="all" value="1" {{if .AllSelected}}checked{{end}}> Select All / Deselect All Countries</label><br><br>
    <select name="country" multiple size="8">
    {{$sel := .SelectedSet}}
    {{range .AllCountries}}<option value="{{.}}" {{if index $sel .}}selected{{end}}>{{.}}</option>{{end}}
    </select><br><br>
    <label><input type="checkbox" name="show_filtered" value="1" {{if .ShowFiltered}}checked{{end}}> Show Cleaned &amp; Filtered Data</label><br>
    <label><input type="checkbox" name="show_raw" value="1" {{if .ShowRaw}}checked{{end}}> Show Original Raw Data</label><br><br>
    <button type="submit">Apply</button>
  </form>
</div>
{{end}}

{{if .NeedSelection}}
<div class="card warn">Please select at least one country from the filter menu to view the dashboard.</div>
{{end}}

{{if .KPIs}}
<div class="card">
  <h3>Key Performance Indicators</h3>
  <div class="badge">Total Revenue: {{.KPIs.Revenue}}</div>
  <div class="badge">Total Orders: {{.KPIs.Orders}}</div>
  <div class="badge">Unique Customers: {{.KPIs.Customers}}</div>
  <div class="badge">Items Sold: {{.KPIs.Items}}</div>
</div>

<div class="card">
  <h3>Monthly Sales Trend</h3>
  {{range .Monthly}}<div class="row"><span>{{.Label}}</span><span><span class="bar" style="width:{{.Width}}%"></span></span><span>{{.Value}}</span></div>{{else}}<p class="muted">No data.</p>{{end}}
</div>

<div class="card">
  <h3>Top 10 Best-Selling Products</h3>
  {{range .TopProducts}}<div class="row"><span>{{.Label}}</span><span><span class="bar" style="width:{{.Width}}%"></span></span><span>{{.Value}}</span></div>{{else}}<p class="muted">No data.</p>{{end}}
</div>

<div class="card">
  <h3>Sales by Hour of the Day</h3>
  {{range .Hourly}}<div class="row"><span>{{.Label}}</span><span><span class="bar" style="width:{{.Width}}%"></span></span><span>{{.Value}}</span></div>{{else}}<p class="muted">No data.</p>{{end}}
</div>

<div class="card">
  <h3>Sales by Day of the Week</h3>
  {{range .Weekday}}<div class="row"><span>{{.Label}}</span><span><span class="bar" style="width:{{.Width}}%"></span></span><span>{{.Value}}</span></div>{{end}}
</div>
{{end}}

{{if .FilteredRows}}
<div class="card">
  <h3>Cleaned &amp; Filtered Data (first rows)</h3>
  <table><thead><tr><th>Invoice</th><th>Description</th><th>Qty</th><th>Unit Price</th><th>Line Total</th><th>Date</th><th>Customer</th><th>Country</th></tr></thead><tbody>
  {{range .FilteredRows}}<tr><td>{{.Invoice}}</td><td>{{.Description}}</td><td>{{.Quantity}}</td><td>{{.UnitPrice}}</td><td>{{.LineTotal}}</td><td>{{.Timestamp.Format "2006-01-02 15:04"}}</td><td>{{.CustomerID}}</td><td>{{.Country}}</td></tr>{{end}}
  </tbody></table>
</div>
{{end}}

{{if .RawPreview}}
<div class="card">
  <h3>Original Raw Data (first rows)</h3>
  <table><thead><tr>{{range .RawPreview.Header}}<th>{{.}}</th>{{end}}</tr></thead><tbody>
  {{range .RawPreview.Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}
  </tbody></table>
</div>
{{end}}

</body></html>
`))

var segmentTpl = template.Must(template.New("segments").Parse(`
<!doctype html><html><head>
<meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1">
<title>Customer Segmentation (RFM)</title>
<style>` + pageStyle + `</style>
</head><body>
<h1>&#129517; Customer Segmentation (RFM)</h1>
<p class="muted" style="text-align:center">Precomputed Recency / Frequency / Monetary segments. <a href="/">&larr; Sales dashboard</a></p>

{{if .Err}}<div class="card warn">{{.Err}}</div>{{end}}

{{if .Distribution}}
<div class="card">
  <h3>Segment Distribution</h3>
  <table><thead><tr><th>Segment</th><th>Customers</th><th>Share</th></tr></thead><tbody>
  {{range .Distribution}}<tr><td>{{.Segment}}</td><td>{{.Count}}</td><td>{{.Percent}}%</td></tr>{{end}}
  </tbody></table>
</div>

<div class="card">
  <h3>Customers per Segment</h3>
  {{range .Bar}}<div class="row"><span>{{.Label}}</span><span><span class="bar" style="width:{{.Width}}%"></span></span><span>{{.Value}}</span></div>{{end}}
</div>

<div class="card">
  <h3>Average Purchase Frequency per Segment</h3>
  {{range .Behavior}}<div class="row"><span>{{.Label}}</span><span><span class="bar {{.Class}}" style="width:{{.Width}}%"></span></span><span>{{.Value}}</span></div>{{end}}
  <p class="muted">Green: highest frequency &middot; Red: lowest frequency &middot; Blue: mid-range</p>
</div>
{{end}}

</body></html>
`))
