package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExportCSV writes one CSV file per report table into dir and returns
// the paths written.
func ExportCSV(e *Exporter, dir string) ([]string, error) {
	var paths []string
	for _, table := range e.Tables() {
		path := filepath.Join(dir, "advisor_"+strings.ToLower(table.Name)+".csv")
		if err := writeCSVFile(path, table); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSVFile(path string, table Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	w.Write(table.Header)
	for _, row := range table.Rows {
		w.Write(row)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
