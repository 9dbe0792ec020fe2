package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// csvDecoder reads delimited text with header-row inference and
// blank-line skipping.
type csvDecoder struct{}

func (csvDecoder) CanDecode(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvDecoder) Decode(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = sniffDelimiter(path)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var headers []string
	var records [][]string
	line := 0
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++
		if blankRecord(rec) {
			continue
		}
		if headers == nil {
			headers = rec
			continue
		}
		records = append(records, rec)
	}
	return headers, records, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
