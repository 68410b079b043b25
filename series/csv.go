package series

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

// Column names of the long-format CSV layout.
const (
	ColumnTime      = "time"
	ColumnTreatment = "treatment"
	ColumnReplicate = "replicate"
	ColumnOD        = "od"
)

// ErrMissingColumn is returned when a required long-format column is absent.
var ErrMissingColumn = errors.New("missing required column")

// csvRow mirrors one long-format CSV record. Numeric cells are kept as text so
// that blank and NA cells can be mapped to NaN instead of failing the read.
type csvRow struct {
	Time      string `csv:"time"`
	Treatment string `csv:"treatment"`
	Replicate string `csv:"replicate"`
	OD        string `csv:"od"`
}

// ReadCSV reads a long-format table with the columns time, treatment,
// replicate and od. Extra columns are ignored.
//
// Empty, "NA" and "NaN" numeric cells become NaN. An empty replicate cell
// defaults to replicate 1.
func ReadCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read long-format csv: %w", err)
	}

	if err := checkHeader(data); err != nil {
		return nil, err
	}

	var records []*csvRow
	if err := gocsv.UnmarshalBytes(data, &records); err != nil {
		return nil, fmt.Errorf("parse long-format csv: %w", err)
	}

	rows := make([]Observation, 0, len(records))
	for i, rec := range records {
		line := i + 2 // header is line 1

		t, err := parseCell(rec.Time)
		if err != nil {
			return nil, fmt.Errorf("line %d: time: %w", line, err)
		}
		od, err := parseCell(rec.OD)
		if err != nil {
			return nil, fmt.Errorf("line %d: od: %w", line, err)
		}
		rep, err := parseReplicate(rec.Replicate)
		if err != nil {
			return nil, fmt.Errorf("line %d: replicate: %w", line, err)
		}

		rows = append(rows, Observation{
			Time:      t,
			Treatment: strings.TrimSpace(rec.Treatment),
			Replicate: rep,
			OD:        od,
		})
	}

	return &Table{Rows: rows}, nil
}

// WriteCSV writes t in the long-format layout accepted by ReadCSV.
func WriteCSV(w io.Writer, t *Table) error {
	records := make([]*csvRow, 0, t.Len())
	for _, row := range t.Rows {
		records = append(records, &csvRow{
			Time:      formatCell(row.Time),
			Treatment: row.Treatment,
			Replicate: strconv.Itoa(row.Replicate),
			OD:        formatCell(row.OD),
		})
	}

	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("write long-format csv: %w", err)
	}

	return nil
}

func checkHeader(data []byte) error {
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	for _, col := range []string{ColumnTime, ColumnTreatment, ColumnReplicate, ColumnOD} {
		if !present[col] {
			return fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	return nil
}

func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		return math.NaN(), nil
	}

	return strconv.ParseFloat(s, 64)
}

func parseReplicate(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid replicate %q", s)
	}

	return int(f), nil
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}
