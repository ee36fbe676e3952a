package export

import (
	"encoding/csv"
	"fmt"
	"os"
)

// utf8BOM makes Excel open Hangul CSVs correctly; the files are meant to be
// double-clicked by analysts, not just parsed.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes a header row plus records to path, prefixed with a UTF-8
// byte order mark.
func WriteCSV(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
