package export

import (
	"fmt"
	"strconv"
	"strings"
)

// overviewRows summarizes the rulebase and the findings the way an
// analyst skims them: system facts first, then action split, hit-count
// health, object diversity, and the finding counts.
func (e *Exporter) overviewRows() [][]string {
	total := len(e.Rules)
	disabled, allow, deny := 0, 0, 0
	zeroHit, measured := 0, 0
	var totalHits uint64

	uniqueApps := map[string]struct{}{}
	uniqueServices := map[string]struct{}{}
	uniqueSources := map[string]struct{}{}
	uniqueDestinations := map[string]struct{}{}
	uniqueZones := map[string]struct{}{}

	for _, r := range e.Rules {
		if r.Disabled {
			disabled++
		}
		switch strings.ToLower(r.Action) {
		case "allow":
			allow++
		case "deny", "drop":
			deny++
		}
		if r.HitsTotal != nil {
			measured++
			totalHits += *r.HitsTotal
			if *r.HitsTotal == 0 {
				zeroHit++
			}
		}
		collect(uniqueApps, r.Applications)
		collect(uniqueServices, r.Services)
		collect(uniqueSources, r.Sources)
		collect(uniqueDestinations, r.Destinations)
		collect(uniqueZones, r.FromZones)
		collect(uniqueZones, r.ToZones)
	}

	mergeMembers := 0
	for _, p := range e.Report.Proposals {
		mergeMembers += len(p.SourceRules)
	}

	rows := [][]string{
		{"System", "Analysis Source", e.Source, "Data source for this analysis"},
		{"System", "Analysis Date", e.GeneratedAt.Format("2006-01-02 15:04:05"), "When this analysis was performed"},
		{"System", "Total Rules", strconv.Itoa(total), "Total number of security rules"},
		{"System", "Enabled Rules", strconv.Itoa(total - disabled), "Number of enabled rules"},
		{"System", "Disabled Rules", strconv.Itoa(disabled), "Number of disabled rules"},

		{"Actions", "Allow Rules", strconv.Itoa(allow), "Rules that allow traffic"},
		{"Actions", "Deny/Drop Rules", strconv.Itoa(deny), "Rules that deny or drop traffic"},
		{"Actions", "Allow Percentage", percent(allow, total), "Percentage of rules that allow traffic"},

		{"Hit Counts", "Measured Rules", strconv.Itoa(measured), "Rules with hit counters reported"},
		{"Hit Counts", "Zero Hit Rules", strconv.Itoa(zeroHit), "Measured rules with no traffic hits"},
		{"Hit Counts", "Zero Hit Percentage", percent(zeroHit, total), "Percentage of rules with no hits"},
		{"Hit Counts", "Total Hits", strconv.FormatUint(totalHits, 10), "Sum of all rule hit counts"},

		{"Diversity", "Unique Applications", strconv.Itoa(len(uniqueApps)), "Number of unique applications referenced"},
		{"Diversity", "Unique Services", strconv.Itoa(len(uniqueServices)), "Number of unique services referenced"},
		{"Diversity", "Unique Sources", strconv.Itoa(len(uniqueSources)), "Number of unique source addresses"},
		{"Diversity", "Unique Destinations", strconv.Itoa(len(uniqueDestinations)), "Number of unique destination addresses"},
		{"Diversity", "Unique Zones", strconv.Itoa(len(uniqueZones)), "Number of unique zones referenced"},

		{"Analysis", "Shadow Findings", strconv.Itoa(len(e.Report.Shadows)), "Rules shadowed by earlier rules"},
		{"Analysis", "Merge Groups", strconv.Itoa(len(e.Report.Proposals)), "Groups of rules that could be merged"},
		{"Analysis", "Unused Rules", strconv.Itoa(len(e.Report.Unused)), "Rules with a measured hit count of zero"},

		{"Recommendations", "Disable Candidates", strconv.Itoa(len(e.Report.Unused)), "Zero-hit rules; consider disabling"},
		{"Recommendations", "Merge Candidates", strconv.Itoa(mergeMembers), "Total rules involved in merge proposals"},
		{"Recommendations", "Review Required", strconv.Itoa(len(e.Report.Shadows) + len(e.Report.Proposals)), "Findings requiring manual review"},
	}
	return rows
}

// collect adds enumerated members to the set, skipping the wildcard so
// diversity counts stay meaningful.
func collect(set map[string]struct{}, values []string) {
	for _, v := range values {
		if v != "" && v != "any" {
			set[v] = struct{}{}
		}
	}
}

func percent(part, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
}
