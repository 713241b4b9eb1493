package marketdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/multicurve/market"
)

// Quote files are plain CSV under a key,value[,as_of] header. Blank
// lines and lines starting with # are skipped. Values stay decimal end
// to end, so reading a file and writing it back does not perturb the
// quotes.

const asOfDateLayout = "2006-01-02"

// ReadQuotesCSV parses quote records from r. The header must be
// key,value or key,value,as_of; the as_of column accepts 2006-01-02 or
// RFC 3339 and may be left empty per row.
func ReadQuotesCSV(r io.Reader) ([]QuoteRecord, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("ReadQuotesCSV: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("ReadQuotesCSV: header: %w", err)
	}
	withAsOf, err := quoteHeader(header)
	if err != nil {
		return nil, err
	}

	var records []QuoteRecord
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("ReadQuotesCSV: row %d: %w", row, err)
		}
		key := market.QuoteKey(strings.TrimSpace(fields[0]))
		if key == "" {
			return nil, fmt.Errorf("ReadQuotesCSV: row %d: empty key", row)
		}
		value, err := decimal.NewFromString(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("ReadQuotesCSV: row %d: value %q: %w", row, fields[1], err)
		}
		rec := QuoteRecord{Key: key, Value: value}
		if withAsOf {
			if ts := strings.TrimSpace(fields[2]); ts != "" {
				rec.AsOf, err = parseAsOf(ts)
				if err != nil {
					return nil, fmt.Errorf("ReadQuotesCSV: row %d: %w", row, err)
				}
			}
		}
		records = append(records, rec)
	}
}

func quoteHeader(fields []string) (withAsOf bool, err error) {
	ok := len(fields) == 2 || len(fields) == 3
	ok = ok && strings.EqualFold(strings.TrimSpace(fields[0]), "key")
	ok = ok && strings.EqualFold(strings.TrimSpace(fields[1]), "value")
	if ok && len(fields) == 3 {
		ok = strings.EqualFold(strings.TrimSpace(fields[2]), "as_of")
	}
	if !ok {
		return false, fmt.Errorf("ReadQuotesCSV: header %q, want key,value[,as_of]", strings.Join(fields, ","))
	}
	return len(fields) == 3, nil
}

func parseAsOf(s string) (time.Time, error) {
	if t, err := time.Parse(asOfDateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("as_of %q: want 2006-01-02 or RFC 3339", s)
	}
	return t, nil
}

// WriteQuotesCSV writes records to w. The as_of column is emitted only
// when at least one record carries a timestamp; midnight UTC timestamps
// are written as plain dates.
func WriteQuotesCSV(w io.Writer, records []QuoteRecord) error {
	withAsOf := false
	for _, rec := range records {
		if !rec.AsOf.IsZero() {
			withAsOf = true
			break
		}
	}

	cw := csv.NewWriter(w)
	header := []string{"key", "value"}
	if withAsOf {
		header = append(header, "as_of")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("WriteQuotesCSV: %w", err)
	}
	for _, rec := range records {
		line := []string{string(rec.Key), rec.Value.String()}
		if withAsOf {
			line = append(line, formatAsOf(rec.AsOf))
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("WriteQuotesCSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteQuotesCSV: %w", err)
	}
	return nil
}

func formatAsOf(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if h, m, sec := t.Clock(); h == 0 && m == 0 && sec == 0 && t.Nanosecond() == 0 && t.Location() == time.UTC {
		return t.Format(asOfDateLayout)
	}
	return t.Format(time.RFC3339)
}

// ReadFixingsCSV parses a date,rate fixing history from r. Dates use
// the 2006-01-02 layout; a repeated date keeps the last row.
func ReadFixingsCSV(r io.Reader) (market.FixingSeries, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return market.FixingSeries{}, fmt.Errorf("ReadFixingsCSV: empty input")
	}
	if err != nil {
		return market.FixingSeries{}, fmt.Errorf("ReadFixingsCSV: header: %w", err)
	}
	if len(header) != 2 ||
		!strings.EqualFold(strings.TrimSpace(header[0]), "date") ||
		!strings.EqualFold(strings.TrimSpace(header[1]), "rate") {
		return market.FixingSeries{}, fmt.Errorf("ReadFixingsCSV: header %q, want date,rate", strings.Join(header, ","))
	}

	obs := make(map[time.Time]float64)
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if err == io.EOF {
			return market.NewFixingSeries(obs), nil
		}
		if err != nil {
			return market.FixingSeries{}, fmt.Errorf("ReadFixingsCSV: row %d: %w", row, err)
		}
		date, err := time.Parse(asOfDateLayout, strings.TrimSpace(fields[0]))
		if err != nil {
			return market.FixingSeries{}, fmt.Errorf("ReadFixingsCSV: row %d: date %q: want 2006-01-02", row, fields[0])
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(fields[1]))
		if err != nil {
			return market.FixingSeries{}, fmt.Errorf("ReadFixingsCSV: row %d: rate %q: %w", row, fields[1], err)
		}
		v, _ := rate.Float64()
		obs[date] = v
	}
}
