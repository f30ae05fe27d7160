package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVExtractor handles CSV files. Rows are rendered as "header: value"
// lines so downstream conversion sees self-describing text.
type CSVExtractor struct{}

func (e *CSVExtractor) Extract(data []byte) (string, int, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", 0, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", 0, fmt.Errorf("csv contains no rows")
	}

	headers := records[0]

	var buf strings.Builder
	for _, row := range records[1:] {
		var fields []string
		for j, cell := range row {
			if j < len(headers) {
				fields = append(fields, headers[j]+": "+cell)
			} else {
				fields = append(fields, cell)
			}
		}
		buf.WriteString(strings.Join(fields, ", "))
		buf.WriteString("\n\n")
	}

	out := strings.TrimSpace(buf.String())
	return out, estimatePages(len(out)), nil
}
