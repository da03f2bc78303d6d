// Package feed reads an import file into the ordered per-line field
// sequences the pipeline consumes.
//
// Feeds are separator-delimited text (semicolon by default). Input may be
// UTF-8 with or without a BOM; anything that is not valid UTF-8 is decoded
// as Latin-1, which legacy exports still produce.
package feed

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Record is one line of the feed: its 1-indexed line number and the raw
// field strings in file order. Records are not modified after reading.
type Record struct {
	Line   int
	Fields []string
}

// ReadFile reads and parses the feed at path.
func ReadFile(path string, separator rune) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	defer f.Close()
	return Read(f, separator)
}

// Read parses a feed from r. Blank lines are skipped; rows may have any
// number of fields, the pipeline enforces the column minimum per record.
func Read(r io.Reader, separator rune) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	decoded, err := decode(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.Comma = separator
	// Rows carry a variable number of trailing token fields.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records []Record
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse feed: %w", err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, Record{Line: line, Fields: fields})
	}
	return records, nil
}

// decode strips a UTF-8 BOM and converts Latin-1 input to UTF-8.
func decode(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, bomUTF8) {
		data = data[len(bomUTF8):]
	}
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	return decoded, nil
}
