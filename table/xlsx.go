package table

import (
	"bytes"
	"errors"

	"github.com/xuri/excelize/v2"
)

var ErrNoSheet = errors.New("workbook has no sheets")

// decodeXLSX reads the first sheet of the workbook with raw cell values so date cells stay as
// serial numbers
func decodeXLSX(data []byte) (*RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	return newTable(rows, FormatXLSX)
}
