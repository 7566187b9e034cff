package batch

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dativo-io/piiredact/internal/evaluator"
)

// Column names of the input and output files.
const (
	ColumnRecordID = "record_id"
	ColumnData     = "data_json"
	ColumnRedacted = "redacted_data_json"
	ColumnIsPII    = "is_pii"
)

// InvalidJSONPayload replaces the payload of a row whose data is not a
// single JSON object. It is the exact marker existing consumers match on, so
// it keeps its spacing while redacted records are written compact.
const InvalidJSONPayload = `{"error": "Invalid JSON format"}`

// ErrMissingColumn is returned when the input header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// errNotObject marks data that decodes but is not a JSON object.
var errNotObject = errors.New("data is not a JSON object")

// Row is one input row.
type Row struct {
	RecordID string
	Data     string
	// HasData is false when the row was too short to reach the data column.
	HasData bool
}

// Output is one output row.
type Output struct {
	RecordID string
	Payload  string
	IsPII    bool
	Invalid  bool
	Findings []evaluator.Finding
}

// ReadRows reads the whole input. Columns are located by header name, so
// their order and any extra columns do not matter. Parsing is lenient about
// stray quotes and ragged rows.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading CSV header: empty input: %w", ErrMissingColumn)
		}
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	idIdx, dataIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case ColumnRecordID:
			idIdx = i
		case ColumnData:
			dataIdx = i
		}
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColumnRecordID)
	}
	if dataIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColumnData)
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row %d: %w", len(rows)+1, err)
		}
		var row Row
		if idIdx < len(rec) {
			row.RecordID = rec[idIdx]
		}
		if dataIdx < len(rec) {
			row.Data = rec[dataIdx]
			row.HasData = true
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// EvaluateRow decodes, evaluates and re-encodes one row. It never fails:
// undecodable data yields InvalidJSONPayload with the PII flag false.
func EvaluateRow(row Row) Output {
	out := Output{RecordID: row.RecordID}
	rec, err := decodeRecord(row)
	if err != nil {
		out.Payload = InvalidJSONPayload
		out.Invalid = true
		return out
	}
	res := evaluator.Evaluate(rec)
	payload, err := encodeRecord(res.Redacted)
	if err != nil {
		out.Payload = InvalidJSONPayload
		out.Invalid = true
		return out
	}
	out.Payload = payload
	out.IsPII = res.IsPII
	out.Findings = res.Findings
	return out
}

// WriteOutputs writes the header and one line per output, in order. Lines
// end in CRLF like the files existing consumers already read.
func WriteOutputs(w io.Writer, outs []Output) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write([]string{ColumnRecordID, ColumnRedacted, ColumnIsPII}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, o := range outs {
		if err := cw.Write([]string{o.RecordID, o.Payload, formatFlag(o.IsPII)}); err != nil {
			return fmt.Errorf("writing record %s: %w", o.RecordID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV output: %w", err)
	}
	return nil
}

// formatFlag renders the PII flag the way existing consumers of this file
// format expect it.
func formatFlag(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// DecodeRecord decodes data that must hold exactly one JSON object. Numbers
// are kept as json.Number so they re-encode unchanged.
func DecodeRecord(data []byte) (evaluator.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rec evaluator.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errNotObject
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after JSON object")
	}
	return rec, nil
}

func decodeRecord(row Row) (evaluator.Record, error) {
	if !row.HasData {
		return nil, errNotObject
	}
	return DecodeRecord([]byte(row.Data))
}

func encodeRecord(rec evaluator.Record) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
