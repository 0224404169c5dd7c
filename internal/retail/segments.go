package retail

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

// segment file headers, lower-case snake-case, matched exactly.
const (
	segColCustomer  = "customer_id"
	segColRecency   = "recency"
	segColFrequency = "frequency"
	segColMonetary  = "monetary"
	segColSegment   = "segment"
)

// LoadSegments reads the precomputed RFM segmentation file at path: one row
// per customer with recency/frequency/monetary scores and a segment label.
// Columns are renamed to the canonical SegmentRecord fields; no row
// filtering is applied.
func LoadSegments(path string) ([]SegmentRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	return ReadSegments(f)
}

// ReadSegments is the io.Reader form of LoadSegments.
func ReadSegments(r io.Reader) ([]SegmentRecord, error) {
	cr := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformedInput, err)
	}

	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}
	for _, name := range []string{segColCustomer, segColRecency, segColFrequency, segColMonetary, segColSegment} {
		if _, ok := pos[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedInput, name)
		}
	}

	var out []SegmentRecord
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, line, err)
		}

		cust, err := parseIntLike(strings.TrimSpace(rec[pos[segColCustomer]]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: non-numeric customer id %q", ErrMalformedInput, line, rec[pos[segColCustomer]])
		}
		recency, err := strconv.ParseFloat(strings.TrimSpace(rec[pos[segColRecency]]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: non-numeric recency %q", ErrMalformedInput, line, rec[pos[segColRecency]])
		}
		freq, err := parseIntLike(strings.TrimSpace(rec[pos[segColFrequency]]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: non-numeric frequency %q", ErrMalformedInput, line, rec[pos[segColFrequency]])
		}
		monetary, err := decimal.NewFromString(strings.TrimSpace(rec[pos[segColMonetary]]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: non-numeric monetary %q", ErrMalformedInput, line, rec[pos[segColMonetary]])
		}

		out = append(out, SegmentRecord{
			CustomerID: cust,
			Recency:    recency,
			Frequency:  freq,
			Monetary:   monetary,
			Segment:    strings.TrimSpace(rec[pos[segColSegment]]),
		})
	}

	return out, nil
}
