package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"rulebase-advisor/internal/model"
)

// ParseHitCounts reads a hit-count overlay CSV with columns
// name,total,last,since (header required, case-insensitive). The result
// maps rule name to its counters; merging with the rulebase happens in
// the engine, which ignores entries for unknown rules.
//
// Rows whose total does not parse are skipped, matching how the device
// reports rules with counting disabled.
func ParseHitCounts(r io.Reader) (map[string]model.HitInfo, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("could not read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	nameCol, ok := cols["name"]
	if !ok {
		return nil, fmt.Errorf("could not find 'name' column in hit-count file")
	}
	totalCol, ok := cols["total"]
	if !ok {
		return nil, fmt.Errorf("could not find 'total' column in hit-count file")
	}

	hits := make(map[string]model.HitInfo)
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if nameCol >= len(record) || totalCol >= len(record) {
			skipped++
			continue
		}
		name := strings.TrimSpace(record[nameCol])
		total, err := strconv.ParseUint(strings.TrimSpace(record[totalCol]), 10, 64)
		if name == "" || err != nil {
			skipped++
			continue
		}
		hits[name] = model.HitInfo{
			Total: total,
			Last:  cleanTimestamp(field(record, cols, "last")),
			Since: cleanTimestamp(field(record, cols, "since")),
		}
	}
	if skipped > 0 {
		slog.Debug("Skipped unparsable hit-count rows", "count", skipped)
	}
	return hits, nil
}
