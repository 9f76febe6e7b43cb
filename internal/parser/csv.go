package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"rulebase-advisor/internal/model"
)

// disabledPrefix is what the PAN-OS web UI prepends to the name and tags
// of a disabled rule in a CSV export.
const disabledPrefix = "[Disabled]"

// CSVImporter reads a rulebase from the CSV file the PAN-OS web UI
// exports for the Security policy ("Export" above the rule table).
// Positions are assigned from row order, since the export preserves
// evaluation order but carries no explicit position column.
type CSVImporter struct {
	r     io.Reader
	Rules []model.Rule
}

func NewCSVImporter(r io.Reader) *CSVImporter {
	return &CSVImporter{r: r}
}

func (p *CSVImporter) Parse() error {
	reader := csv.NewReader(p.r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("could not read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["name"]; !ok {
		return fmt.Errorf("could not find 'Name' column in rulebase export")
	}
	_, hasHits := cols["rule usage hit count"]

	position := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		position++

		name := strings.TrimSpace(field(record, cols, "name"))
		if name == "" {
			name = fmt.Sprintf("rule_%d", position)
		}
		tags := parseListField(field(record, cols, "tags"))

		disabled := strings.HasPrefix(name, disabledPrefix)
		for _, tag := range tags {
			if strings.HasPrefix(tag, disabledPrefix) {
				disabled = true
			}
		}
		if disabled {
			name = strings.TrimSpace(strings.ReplaceAll(name, disabledPrefix, ""))
		}

		rule := model.Rule{
			Name:         name,
			Position:     position,
			Action:       strings.ToLower(strings.TrimSpace(fieldOr(record, cols, "action", "allow"))),
			FromZones:    parseAnyListField(field(record, cols, "source zone")),
			ToZones:      parseAnyListField(field(record, cols, "destination zone")),
			Sources:      parseAnyListField(field(record, cols, "source address")),
			Destinations: parseAnyListField(field(record, cols, "destination address")),
			Applications: parseAnyListField(field(record, cols, "application")),
			Services:     parseAnyListField(field(record, cols, "service")),
			SourceUsers:  parseAnyListField(field(record, cols, "source user")),
			// URL category, schedule, log flags, and negation are not
			// present in the web UI export; they stay at their defaults.
			LogSetting:         field(record, cols, "options"),
			Disabled:           disabled,
			Tags:               tags,
			RuleType:           fieldOr(record, cols, "type", "universal"),
			SourceDevices:      parseAnyListField(field(record, cols, "source device")),
			DestinationDevices: parseAnyListField(field(record, cols, "destination device")),
			AppsSeen:           field(record, cols, "rule usage apps seen"),
			DaysNoNewApps:      field(record, cols, "days with no new apps"),
			Created:            field(record, cols, "created"),
			Modified:           field(record, cols, "modified"),
			LastHit:            cleanTimestamp(field(record, cols, "rule usage last hit")),
			CounterSince:       cleanTimestamp(field(record, cols, "rule usage first hit")),
		}
		if profile := field(record, cols, "profile"); profile != "" {
			rule.ProfileSetting = map[string][]string{"group": {profile}}
		}

		// The export embeds hit counters in the rule rows. A file without
		// the column means the counters were never measured, so HitsTotal
		// stays nil rather than zero.
		if hasHits {
			total, err := strconv.ParseUint(strings.TrimSpace(field(record, cols, "rule usage hit count")), 10, 64)
			if err != nil {
				total = 0
			}
			rule.HitsTotal = &total
		}

		p.Rules = append(p.Rules, rule)
	}
	return nil
}

func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func fieldOr(record []string, cols map[string]int, name, fallback string) string {
	if v := strings.TrimSpace(field(record, cols, name)); v != "" {
		return v
	}
	return fallback
}

// parseAnyListField splits a semicolon-separated object list, stripping
// the [Disabled] prefixes the UI adds. Empty or "any" collapses to the
// single "any" sentinel the engine expects.
func parseAnyListField(value string) []string {
	items := parseListField(value)
	if len(items) == 0 {
		return []string{"any"}
	}
	return items
}

func parseListField(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if strings.EqualFold(value, "any") {
		return []string{"any"}
	}
	var items []string
	for _, item := range strings.Split(value, ";") {
		item = strings.TrimSpace(strings.ReplaceAll(item, disabledPrefix, ""))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// cleanTimestamp drops the "-" placeholder the export uses for rules that
// were never hit.
func cleanTimestamp(value string) string {
	value = strings.TrimSpace(value)
	if value == "-" {
		return ""
	}
	return value
}
