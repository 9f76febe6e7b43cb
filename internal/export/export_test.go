package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"rulebase-advisor/internal/model"
)

func testExporter() *Exporter {
	zero := uint64(0)
	busy := uint64(512)
	rules := []model.Rule{
		{
			Name: "allow-web", Position: 1, Action: "allow",
			FromZones: []string{"trust"}, ToZones: []string{"untrust"},
			Sources: []string{"net-10"}, Destinations: []string{"any"},
			Applications: []string{"web-browsing"}, Services: []string{"service-http"},
			HitsTotal: &busy,
		},
		{
			Name: "stale-ftp", Position: 2, Action: "allow",
			FromZones: []string{"trust"}, ToZones: []string{"dmz"},
			Sources: []string{"net-10"}, Destinations: []string{"ftp-server"},
			Applications: []string{"ftp"}, Services: []string{"any"},
			HitsTotal: &zero,
		},
		{
			Name: "unmeasured", Position: 3, Action: "deny",
		},
	}
	report := model.Report{
		Unused: []model.Rule{rules[1]},
		Shadows: []model.ShadowFinding{{
			ShadowedRule: "stale-ftp", ShadowedPosition: 2,
			ShadowingRule: "allow-web", ShadowingPosition: 1,
			Reason:         "Earlier rule fully covers later rule",
			Recommendation: "review",
		}},
		Proposals: []model.Proposal{{
			ProposedName:      "merge_of_allow-web_stale-ftp",
			SourceRules:       []string{"allow-web", "stale-ftp"},
			Positions:         []int{1, 2},
			ApplicationsUnion: []string{"ftp", "web-browsing"},
			ServicesUnion:     []string{"any", "service-http"},
			SourcesUnion:      []string{"net-10"},
			DestinationsUnion: []string{"any", "ftp-server"},
			Confidence:        model.ConfidenceHigh,
			Recommendation:    "Merge: identical qualifiers; union of objects is equivalent; no intervening deny.",
		}},
	}
	return &Exporter{
		Rules:       rules,
		Report:      report,
		Source:      "CSV Import: test.csv",
		GeneratedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestAnalysisRowsCarryRecommendations(t *testing.T) {
	e := testExporter()
	rows := e.analysisRows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 analysis rows, got %d", len(rows))
	}

	recCol := len(analysisHeader) - 1
	if rec := rows[1][recCol]; !strings.Contains(rec, "Disable: 0 hits") ||
		!strings.Contains(rec, `Shadowed by "allow-web" (pos 1)`) ||
		!strings.Contains(rec, "Merge-candidate with allow-web (pos 1)") {
		t.Errorf("stale-ftp recommendation incomplete: %q", rec)
	}
	if rec := rows[2][recCol]; rec != "" {
		t.Errorf("unmeasured rule must have no recommendation, got %q", rec)
	}

	// Hit count column: measured values render, unmeasured stays blank.
	hitCol := 16
	if rows[0][hitCol] != "512" || rows[1][hitCol] != "0" || rows[2][hitCol] != "" {
		t.Errorf("hit count column wrong: %q %q %q", rows[0][hitCol], rows[1][hitCol], rows[2][hitCol])
	}

	// Well-known services are annotated with their ports.
	if svc := rows[0][12]; svc != "service-http (tcp/80, tcp/8080)" {
		t.Errorf("service annotation missing: %q", svc)
	}
}

func TestExportCSVWritesAllTables(t *testing.T) {
	dir := t.TempDir()
	paths, err := ExportCSV(testExporter(), dir)
	if err != nil {
		t.Fatalf("expected export to succeed, got %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("expected 4 files, got %v", paths)
	}

	f, err := os.Open(filepath.Join(dir, "advisor_shadows.csv"))
	if err != nil {
		t.Fatalf("shadows file missing: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to re-read shadows csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus one finding, got %d records", len(records))
	}
	if records[1][0] != "stale-ftp" || records[1][3] != "1" {
		t.Errorf("unexpected shadow record %v", records[1])
	}
}

func TestExportXLSXRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportXLSX(testExporter(), dir)
	if err != nil {
		t.Fatalf("expected export to succeed, got %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{"Analysis", "Shadows", "Proposals", "Overview"}
	if len(sheets) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, sheets)
	}
	for i, name := range want {
		if sheets[i] != name {
			t.Errorf("sheet %d = %q, want %q", i, sheets[i], name)
		}
	}

	name, err := f.GetCellValue("Analysis", "B2")
	if err != nil || name != "allow-web" {
		t.Errorf("Analysis!B2 = %q (%v), want allow-web", name, err)
	}
	proposed, err := f.GetCellValue("Proposals", "A2")
	if err != nil || proposed != "merge_of_allow-web_stale-ftp" {
		t.Errorf("Proposals!A2 = %q (%v)", proposed, err)
	}
}

func TestExportHTMLRendersTables(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportHTML(testExporter(), dir)
	if err != nil {
		t.Fatalf("expected export to succeed, got %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	page := string(raw)
	for _, want := range []string{
		"<h2>Analysis</h2>", "<h2>Shadows</h2>", "<h2>Proposals</h2>", "<h2>Overview</h2>",
		"allow-web", "CSV Import: test.csv", "2026-08-30 12:00:00",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestOverviewRows(t *testing.T) {
	rows := testExporter().overviewRows()
	byMetric := make(map[string]string, len(rows))
	for _, row := range rows {
		byMetric[row[1]] = row[2]
	}
	checks := map[string]string{
		"Total Rules":      "3",
		"Allow Rules":      "2",
		"Deny/Drop Rules":  "1",
		"Measured Rules":   "2",
		"Zero Hit Rules":   "1",
		"Shadow Findings":  "1",
		"Merge Groups":     "1",
		"Merge Candidates": "2",
		"Review Required":  "2",
		"Unique Zones":     "3",
	}
	for metric, want := range checks {
		if got := byMetric[metric]; got != want {
			t.Errorf("%s = %q, want %q", metric, got, want)
		}
	}
}
