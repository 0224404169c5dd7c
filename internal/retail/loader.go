package retail

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

// ErrInputNotFound is returned when an input file does not exist.
var ErrInputNotFound = errors.New("input file not found")

// ErrMalformedInput is returned when an input file cannot be parsed into a
// clean table: missing mapped columns, unparsable timestamps, non-numeric
// quantities, prices or customer ids. The load fails as a whole; there are
// no partial tables.
var ErrMalformedInput = errors.New("malformed input")

// timestampLayouts are the accepted invoice date formats, tried in order.
// The original exports use "12/1/2010 8:26"; re-exports use ISO-ish forms.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/06 15:04",
}

type columnIndex struct {
	invoice     int
	description int
	quantity    int
	unitPrice   int
	timestamp   int
	customerID  int
	country     int
}

// LoadTransactions reads, cleans and derives the transaction table from the
// CSV at path. Cleaning steps, in order: parse the timestamp (any failure
// aborts the load), drop rows with an empty customer id, coerce the rest to
// integers, drop rows with quantity <= 0 or unit price <= 0, then derive
// line total, month bucket, hour and weekday name.
func LoadTransactions(path string, mapping ColumnMapping) ([]Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	return ReadTransactions(f, mapping)
}

// ReadTransactions is the io.Reader form of LoadTransactions. Input is
// decoded as ISO-8859-1, the encoding of the original retail export.
func ReadTransactions(r io.Reader, mapping ColumnMapping) ([]Transaction, error) {
	cr := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformedInput, err)
	}
	idx, err := resolveColumns(header, mapping)
	if err != nil {
		return nil, err
	}

	var out []Transaction
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, line, err)
		}

		ts, err := parseTimestamp(rec[idx.timestamp])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: unparsable timestamp %q", ErrMalformedInput, line, rec[idx.timestamp])
		}

		rawCust := strings.TrimSpace(rec[idx.customerID])
		if rawCust == "" {
			continue // missing customer id, dropped at load time
		}
		cust, err := parseIntLike(rawCust)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: non-numeric customer id %q", ErrMalformedInput, line, rawCust)
		}

		qty, err := parseIntLike(strings.TrimSpace(rec[idx.quantity]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: non-numeric quantity %q", ErrMalformedInput, line, rec[idx.quantity])
		}
		price, err := decimal.NewFromString(strings.TrimSpace(rec[idx.unitPrice]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: non-numeric unit price %q", ErrMalformedInput, line, rec[idx.unitPrice])
		}

		// Returns and non-sales entries.
		if qty <= 0 || price.Sign() <= 0 {
			continue
		}

		out = append(out, Transaction{
			Invoice:     strings.TrimSpace(rec[idx.invoice]),
			Description: strings.TrimSpace(rec[idx.description]),
			Quantity:    qty,
			UnitPrice:   price,
			Timestamp:   ts,
			CustomerID:  cust,
			Country:     strings.TrimSpace(rec[idx.country]),
			LineTotal:   price.Mul(decimal.NewFromInt(qty)),
			Month:       ts.Format("2006-01"),
			Hour:        ts.Hour(),
			Weekday:     ts.Weekday().String(),
		})
	}

	return out, nil
}

// RawPreview holds the first rows of a file exactly as they appear on disk,
// before any cleaning. Used by the raw-data table toggle.
type RawPreview struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// LoadRawPreview reads up to limit raw rows from the CSV at path, with no
// cleaning applied.
func LoadRawPreview(path string, limit int) (*RawPreview, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(f))
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformedInput, err)
	}

	preview := &RawPreview{Header: header}
	for len(preview.Rows) < limit {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		preview.Rows = append(preview.Rows, rec)
	}
	return preview, nil
}

func resolveColumns(header []string, mapping ColumnMapping) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}

	idx := columnIndex{}
	for _, col := range []struct {
		name string
		dst  *int
	}{
		{mapping.Invoice, &idx.invoice},
		{mapping.Description, &idx.description},
		{mapping.Quantity, &idx.quantity},
		{mapping.UnitPrice, &idx.unitPrice},
		{mapping.Timestamp, &idx.timestamp},
		{mapping.CustomerID, &idx.customerID},
		{mapping.Country, &idx.country},
	} {
		i, ok := pos[col.name]
		if !ok {
			return columnIndex{}, fmt.Errorf("%w: missing column %q", ErrMalformedInput, col.name)
		}
		*col.dst = i
	}
	return idx, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// parseIntLike accepts plain integers and float forms with an integral
// value ("17850" and "17850.0"), mirroring how the identifier column
// round-trips through spreadsheet tools.
func parseIntLike(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int64(f), nil
}
