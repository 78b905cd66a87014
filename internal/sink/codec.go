package sink

import (
	"fmt"
	"strings"
)

// codec encodes and decodes delimited rows for one run. encoding/csv
// hardcodes the double quote, and both the delimiter and the quote
// character are configurable here, so rows get their own small codec.
type codec struct {
	delimiter rune
	quote     rune
}

func newCodec(delimiter, quote string) codec {
	return codec{
		delimiter: []rune(delimiter)[0],
		quote:     []rune(quote)[0],
	}
}

// encodeRow renders one row, quoting any cell containing the delimiter,
// the quote character, or a line break. Quote characters inside a
// quoted cell are doubled.
func (c codec) encodeRow(cells []string) string {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteRune(c.delimiter)
		}
		if strings.ContainsAny(cell, string(c.delimiter)+string(c.quote)+"\r\n") {
			b.WriteRune(c.quote)
			b.WriteString(strings.ReplaceAll(cell, string(c.quote), string(c.quote)+string(c.quote)))
			b.WriteRune(c.quote)
		} else {
			b.WriteString(cell)
		}
	}
	b.WriteString("\n")
	return b.String()
}

// decodeRow parses one line into cells, honoring quoting. Used only to
// adopt the header row of a pre-existing destination file.
func (c codec) decodeRow(line string) ([]string, error) {
	var cells []string
	var cell strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuotes && r == c.quote && i+1 < len(runes) && runes[i+1] == c.quote:
			cell.WriteRune(c.quote)
			i++
		case r == c.quote:
			inQuotes = !inQuotes
		case r == c.delimiter && !inQuotes:
			cells = append(cells, cell.String())
			cell.Reset()
		default:
			cell.WriteRune(r)
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("unterminated quote in row %q", line)
	}
	cells = append(cells, cell.String())

	return cells, nil
}
