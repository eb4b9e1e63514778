package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/kiranshivaraju/agentlist/pkg/models"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffLen is how much of a CSV stream is inspected to pick a decoder.
const sniffLen = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// ReadCSV streams a CSV document, calling emit once per data row in file
// order. Returning an error from emit stops the scan and returns that error.
func ReadCSV(r io.Reader, emit func(models.Record) error) error {
	cr := csv.NewReader(decodeReader(r))
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: read header: %w", ErrParse, err)
	}
	keys := NormalizeHeaders(header)

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrParse, err)
		}
		if err := emit(buildRecord(keys, row)); err != nil {
			return err
		}
	}
}

// decodeReader transcodes r to UTF-8. A BOM selects UTF-8 or UTF-16;
// otherwise a head that is not valid UTF-8 is read as ISO-8859-1.
func decodeReader(r io.Reader) io.Reader {
	br := bufio.NewReaderSize(r, sniffLen)
	head, _ := br.Peek(sniffLen)

	if hasBOM(head) || utf8.Valid(trimPartialRune(head)) {
		return transform.NewReader(br, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	}
	return transform.NewReader(br, charmap.ISO8859_1.NewDecoder())
}

func hasBOM(b []byte) bool {
	return bytes.HasPrefix(b, bomUTF8) || bytes.HasPrefix(b, bomUTF16LE) || bytes.HasPrefix(b, bomUTF16BE)
}

// trimPartialRune drops a multi-byte sequence cut off by the sniff window.
func trimPartialRune(b []byte) []byte {
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}
			return b
		}
	}
	return b
}
