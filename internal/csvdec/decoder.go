// Package csvdec decodes the upstream CSV snapshot into header-keyed rows.
package csvdec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/starford/algiz/internal/apperr"
	"github.com/starford/algiz/internal/models"
)

// Decode parses content as a header row followed by data rows and returns
// one RawRow per data line, keyed by the header's column names.
//
// The decoder is tolerant where the upstream is known to vary: invalid UTF-8
// bytes are dropped before parsing, and a row with fewer fields than the
// header simply lacks the trailing keys. Structurally broken input (bad
// quoting, or no header at all) fails, wrapping apperr.ErrDecodeFailed.
func Decode(content string) ([]models.RawRow, error) {
	content = strings.ToValidUTF8(content, "")

	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", apperr.ErrDecodeFailed)
		}
		return nil, fmt.Errorf("%w: header: %v", apperr.ErrDecodeFailed, err)
	}

	var rows []models.RawRow
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", apperr.ErrDecodeFailed, len(rows)+2, err)
		}
		row := make(models.RawRow, len(header))
		for i, col := range header {
			if i >= len(fields) {
				break
			}
			row[col] = fields[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
