// Package export renders one analysis run into analyst-facing report
// files. It consumes the engine's output as-is and never feeds anything
// back; the engine stays a pure function of its input snapshot.
package export

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"rulebase-advisor/internal/model"
	"rulebase-advisor/pkg/wellknown"
)

// Exporter renders one analysis run. GeneratedAt comes from the caller;
// nothing below the CLI reads the clock.
type Exporter struct {
	Rules       []model.Rule
	Report      model.Report
	Source      string
	GeneratedAt time.Time
}

// Table is one report section; every output format renders the same
// tables.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// analysisHeader mirrors the column layout of the device's own rulebase
// export, with the advisor's Recommendation column appended.
var analysisHeader = []string{
	"Position", "Name", "Tags", "Type", "Source Zone", "Source Address",
	"Source User", "Source Device", "Destination Zone", "Destination Address",
	"Destination Device", "Application", "Service", "Action", "Profile",
	"Options", "Rule Usage Hit Count", "Rule Usage Last Hit",
	"Rule Usage First Hit", "Rule Usage Apps Seen", "Days With No New Apps",
	"Modified", "Created", "Recommendation",
}

var shadowHeader = []string{
	"ShadowedRule", "ShadowedPos", "ShadowingRule", "ShadowingPos",
	"Reason", "Recommendation",
}

var proposalHeader = []string{
	"ProposedName", "SourceRules", "Positions", "ApplicationsUnion",
	"ServicesUnion", "SourcesUnion", "DestinationsUnion", "OrderSensitive",
	"OrderReason", "Confidence", "Recommendation",
}

var overviewHeader = []string{"Category", "Metric", "Value", "Description"}

func (e *Exporter) Tables() []Table {
	return []Table{
		{Name: "Analysis", Header: analysisHeader, Rows: e.analysisRows()},
		{Name: "Shadows", Header: shadowHeader, Rows: e.shadowRows()},
		{Name: "Proposals", Header: proposalHeader, Rows: e.proposalRows()},
		{Name: "Overview", Header: overviewHeader, Rows: e.overviewRows()},
	}
}

func (e *Exporter) analysisRows() [][]string {
	recs := e.recommendations()

	ordered := make([]model.Rule, len(e.Rules))
	copy(ordered, e.Rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	rows := make([][]string, 0, len(ordered))
	for _, r := range ordered {
		hitCount := ""
		if r.HitsTotal != nil {
			hitCount = strconv.FormatUint(*r.HitsTotal, 10)
		}
		rows = append(rows, []string{
			strconv.Itoa(r.Position),
			r.Name,
			strings.Join(r.Tags, "; "),
			r.RuleType,
			strings.Join(r.FromZones, "; "),
			strings.Join(r.Sources, "; "),
			strings.Join(r.SourceUsers, "; "),
			strings.Join(r.SourceDevices, "; "),
			strings.Join(r.ToZones, "; "),
			strings.Join(r.Destinations, "; "),
			strings.Join(r.DestinationDevices, "; "),
			strings.Join(r.Applications, "; "),
			describeServices(r.Services),
			r.Action,
			profileString(r.ProfileSetting),
			r.LogSetting,
			hitCount,
			r.LastHit,
			r.CounterSince,
			r.AppsSeen,
			r.DaysNoNewApps,
			r.Modified,
			r.Created,
			strings.Join(recs[r.Name], " | "),
		})
	}
	return rows
}

// recommendations assembles the per-rule advisory lines the analysis
// table carries, one source per detector.
func (e *Exporter) recommendations() map[string][]string {
	recs := make(map[string][]string)

	for _, r := range e.Report.Unused {
		recs[r.Name] = append(recs[r.Name], "Disable: 0 hits over observation window.")
	}
	for _, s := range e.Report.Shadows {
		recs[s.ShadowedRule] = append(recs[s.ShadowedRule], fmt.Sprintf(
			"Shadowed by %q (pos %d); consider merge into top-most and remove after review.",
			s.ShadowingRule, s.ShadowingPosition))
	}
	for _, p := range e.Report.Proposals {
		for i, name := range p.SourceRules {
			var others []string
			for j, other := range p.SourceRules {
				if j != i {
					others = append(others, fmt.Sprintf("%s (pos %d)", other, p.Positions[j]))
				}
			}
			msg := fmt.Sprintf("Merge-candidate with %s; confidence=%s.",
				strings.Join(others, ", "), p.Confidence)
			if p.OrderReason != "" {
				msg += " " + p.OrderReason
			}
			recs[name] = append(recs[name], msg)
		}
	}
	return recs
}

func (e *Exporter) shadowRows() [][]string {
	rows := make([][]string, 0, len(e.Report.Shadows))
	for _, s := range e.Report.Shadows {
		rows = append(rows, []string{
			s.ShadowedRule,
			strconv.Itoa(s.ShadowedPosition),
			s.ShadowingRule,
			strconv.Itoa(s.ShadowingPosition),
			s.Reason,
			s.Recommendation,
		})
	}
	return rows
}

func (e *Exporter) proposalRows() [][]string {
	rows := make([][]string, 0, len(e.Report.Proposals))
	for _, p := range e.Report.Proposals {
		positions := make([]string, len(p.Positions))
		for i, pos := range p.Positions {
			positions[i] = strconv.Itoa(pos)
		}
		rows = append(rows, []string{
			p.ProposedName,
			strings.Join(p.SourceRules, "; "),
			strings.Join(positions, "; "),
			strings.Join(p.ApplicationsUnion, "; "),
			describeServices(p.ServicesUnion),
			strings.Join(p.SourcesUnion, "; "),
			strings.Join(p.DestinationsUnion, "; "),
			strconv.FormatBool(p.OrderSensitive),
			p.OrderReason,
			p.Confidence,
			p.Recommendation,
		})
	}
	return rows
}

// describeServices annotates well-known service names with their ports
// so an analyst does not have to look them up on the device.
func describeServices(services []string) string {
	parts := make([]string, len(services))
	for i, svc := range services {
		parts[i] = wellknown.Describe(svc)
	}
	return strings.Join(parts, "; ")
}

func profileString(profiles map[string][]string) string {
	if len(profiles) == 0 {
		return ""
	}
	keys := make([]string, 0, len(profiles))
	for k := range profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + strings.Join(profiles[k], ", ")
	}
	return strings.Join(parts, "; ")
}
