package table

import (
	"bytes"
	"encoding/csv"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func decodeCSV(data []byte) (*RawTable, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	return newTable(records, FormatCSV)
}
