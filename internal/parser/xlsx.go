package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// xlsxDecoder reads the first sheet of a workbook. Absent cells default
// to the empty string.
type xlsxDecoder struct{}

func (xlsxDecoder) CanDecode(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxDecoder) Decode(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}
	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	var headers []string
	var records [][]string
	for _, rec := range raw {
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
