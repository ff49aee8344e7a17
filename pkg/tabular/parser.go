// Package tabular parses the small, fixed-schema CSV exports consumed by the
// ingester. It is deliberately lenient: short rows are padded with empty
// values instead of being rejected.
package tabular

import (
	"bytes"
	"strings"
)

const (
	delimiter = ','
	quote     = '"'
)

// Record is one data row keyed by header name
type Record map[string]string

// Table is a parsed dataset
type Table struct {
	Header  []string
	Records []Record
}

type lexState int

const (
	outsideQuotes lexState = iota
	insideQuotes
)

// SplitLine splits a single line into fields.
//
// A quoted field may contain the delimiter, and a doubled quote inside a
// quoted field produces one literal quote. Spaces before an opening quote
// are dropped. Quotes appearing in the middle of an unquoted field are kept
// verbatim.
func SplitLine(line string) []string {
	fields := make([]string, 0, 16)
	var field strings.Builder
	state := outsideQuotes
	fieldStart := true

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch state {
		case outsideQuotes:
			switch {
			case c == delimiter:
				fields = append(fields, field.String())
				field.Reset()
				fieldStart = true
				continue
			case c == ' ' && fieldStart:
				// still leading whitespace; a quote may yet open the field
				field.WriteByte(c)
				continue
			case c == quote && fieldStart:
				field.Reset()
				state = insideQuotes
			default:
				field.WriteByte(c)
			}
		case insideQuotes:
			if c == quote {
				if i+1 < len(line) && line[i+1] == quote {
					field.WriteByte(quote)
					i++
				} else {
					state = outsideQuotes
				}
			} else {
				field.WriteByte(c)
			}
		}
		fieldStart = false
	}
	return append(fields, field.String())
}

// Parse splits data into lines, reads the header from the first one and
// returns every non-blank following line as a Record.
func Parse(data []byte) *Table {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	lines := strings.Split(string(data), "\n")

	t := &Table{}
	if len(lines) == 0 {
		return t
	}

	t.Header = SplitLine(strings.TrimSuffix(lines[0], "\r"))
	for i := range t.Header {
		t.Header[i] = strings.TrimSpace(t.Header[i])
	}

	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		values := SplitLine(line)
		rec := make(Record, len(t.Header))
		for i, name := range t.Header {
			if i < len(values) {
				rec[name] = values[i]
			} else {
				rec[name] = ""
			}
		}
		t.Records = append(t.Records, rec)
	}
	return t
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Records)
}
