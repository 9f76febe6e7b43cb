package engine

import (
	"fmt"
	"sort"
	"strings"

	"rulebase-advisor/internal/model"
)

// Analyzer runs the read-only advisory checks over one ordered rulebase
// snapshot: unused-rule detection, shadow detection, and merge proposals
// with an order-sensitivity scan. It never mutates the rulebase and holds
// no state across runs; re-running over the same snapshot yields
// identical results.
//
// The shadow scan is quadratic in rule count on purpose. Rulebases in the
// hundreds to low thousands finish in well under a second, and the
// pairwise formulation is the one that is easy to convince yourself is
// correct. Rulebases far beyond that are the scalability ceiling of this
// engine.
type Analyzer struct {
	rules []model.Rule
	dims  []ruleDims
}

// ruleDims is a rule's match surface with the "any" sentinel resolved,
// precomputed once so the quadratic scans stay cheap.
type ruleDims struct {
	from, to, src, dst, app, svc, user, urlcat MatchSet
	action                                     string
	schedule                                   string
}

// mergeUnion is the match surface a proposed merge would expose.
type mergeUnion struct {
	from, to, src, dst, app, svc, user, urlcat MatchSet
	schedule                                   string
}

// NewAnalyzer copies the rule list, merges the optional hit-count overlay
// by rule name, and orders rules by position. Overlay entries naming
// unknown rules are ignored; rules absent from the overlay keep
// HitsTotal nil ("not measured").
func NewAnalyzer(rules []model.Rule, hits map[string]model.HitInfo) *Analyzer {
	owned := make([]model.Rule, len(rules))
	copy(owned, rules)
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].Position < owned[j].Position
	})

	for i := range owned {
		if info, ok := hits[owned[i].Name]; ok {
			total := info.Total
			owned[i].HitsTotal = &total
			owned[i].LastHit = info.Last
			owned[i].CounterSince = info.Since
		}
	}

	dims := make([]ruleDims, len(owned))
	for i, r := range owned {
		dims[i] = ruleDims{
			from:     NewMatchSet(r.FromZones),
			to:       NewMatchSet(r.ToZones),
			src:      NewMatchSet(r.Sources),
			dst:      NewMatchSet(r.Destinations),
			app:      NewMatchSet(r.Applications),
			svc:      NewMatchSet(r.Services),
			user:     NewMatchSet(r.SourceUsers),
			urlcat:   NewMatchSet(r.URLCategories),
			action:   strings.ToLower(r.Action),
			schedule: r.Schedule,
		}
	}

	return &Analyzer{rules: owned, dims: dims}
}

// Rules returns the analyzer's ordered snapshot with the hit overlay
// applied, for callers that render the rulebase alongside the findings.
func (a *Analyzer) Rules() []model.Rule {
	return a.rules
}

// Analyze runs all detectors and aggregates their results.
func (a *Analyzer) Analyze() model.Report {
	return model.Report{
		Unused:    a.UnusedRules(),
		Shadows:   a.FindShadowed(),
		Proposals: a.ProposeMerges(),
	}
}

// UnusedRules returns rules whose hit counter was measured and is exactly
// zero, in rulebase order. Rules with no measurement are never reported:
// absence of data is not absence of traffic.
func (a *Analyzer) UnusedRules() []model.Rule {
	var unused []model.Rule
	for _, r := range a.rules {
		if r.HitsTotal != nil && *r.HitsTotal == 0 {
			unused = append(unused, r)
		}
	}
	return unused
}

// FindShadowed scans every ordered pair of enabled rules with equal
// action and reports the later rule as shadowed wherever the earlier
// rule's match surface fully covers it. A rule shadowed by several
// earlier rules yields one finding per shadowing rule.
func (a *Analyzer) FindShadowed() []model.ShadowFinding {
	var findings []model.ShadowFinding
	for i := range a.rules {
		earlier := &a.rules[i]
		if earlier.Disabled {
			continue
		}
		for j := i + 1; j < len(a.rules); j++ {
			later := &a.rules[j]
			if later.Disabled {
				continue
			}
			if a.dims[i].action != a.dims[j].action {
				continue
			}
			if !a.covers(i, j) {
				continue
			}
			findings = append(findings, model.ShadowFinding{
				ShadowedRule:      later.Name,
				ShadowedPosition:  later.Position,
				ShadowingRule:     earlier.Name,
				ShadowingPosition: earlier.Position,
				Reason:            "Earlier rule fully covers later rule",
				Recommendation: fmt.Sprintf(
					"Later rule appears shadowed by earlier rule; consider merging into the top-most rule %q or removing after review.",
					earlier.Name),
			})
		}
	}
	return findings
}

// covers reports whether rule i's match surface is a superset of rule
// j's on every dimension. A schedule mismatch always fails the check:
// two different named schedules could overlap on the wall clock, but
// asserting a shadow there would be a guess, so none is asserted.
func (a *Analyzer) covers(i, j int) bool {
	di, dj := &a.dims[i], &a.dims[j]
	return di.from.Covers(dj.from) &&
		di.to.Covers(dj.to) &&
		di.src.Covers(dj.src) &&
		di.dst.Covers(dj.dst) &&
		di.app.Covers(dj.app) &&
		di.svc.Covers(dj.svc) &&
		di.user.Covers(dj.user) &&
		di.urlcat.Covers(dj.urlcat) &&
		di.schedule == dj.schedule
}

// ProposeMerges buckets rules by their non-broadening fingerprint and
// turns each bucket of two or more into a merge proposal, unless the
// union cannot be trusted: groups containing a negated rule are skipped
// (negation semantics are not modeled by the union), as are groups that
// mix a wildcard member with an enumerated member in any unioned
// dimension (the union would silently widen the enumerated side to any).
func (a *Analyzer) ProposeMerges() []model.Proposal {
	buckets := make(map[string][]int)
	var order []string
	for i, r := range a.rules {
		fp := Fingerprint(r)
		if _, seen := buckets[fp]; !seen {
			order = append(order, fp)
		}
		buckets[fp] = append(buckets[fp], i)
	}

	var proposals []model.Proposal
	for _, fp := range order {
		group := buckets[fp]
		if len(group) < 2 {
			continue
		}
		if p, ok := a.proposeGroup(group); ok {
			proposals = append(proposals, p)
		}
	}
	return proposals
}

func (a *Analyzer) proposeGroup(group []int) (model.Proposal, bool) {
	for _, idx := range group {
		if a.rules[idx].NegateSource || a.rules[idx].NegateDestination {
			return model.Proposal{}, false
		}
	}
	if a.mixesAnyAndEnumerated(group) {
		return model.Proposal{}, false
	}

	var apps, svcs, srcs, dsts []string
	names := make([]string, 0, len(group))
	positions := make([]int, 0, len(group))
	for _, idx := range group {
		r := &a.rules[idx]
		apps = append(apps, r.Applications...)
		svcs = append(svcs, r.Services...)
		srcs = append(srcs, r.Sources...)
		dsts = append(dsts, r.Destinations...)
		names = append(names, r.Name)
		positions = append(positions, r.Position)
	}
	apps, svcs, srcs, dsts = dedupSorted(apps), dedupSorted(svcs), dedupSorted(srcs), dedupSorted(dsts)

	lo, hi := positions[0], positions[0]
	for _, p := range positions[1:] {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}

	first := &a.dims[group[0]]
	union := mergeUnion{
		from:     first.from,
		to:       first.to,
		src:      NewMatchSet(srcs),
		dst:      NewMatchSet(dsts),
		app:      NewMatchSet(apps),
		svc:      NewMatchSet(svcs),
		user:     first.user,
		urlcat:   first.urlcat,
		schedule: first.schedule,
	}

	sensitive, reason := a.orderSensitiveBetween(lo, hi, union)

	confidence := model.ConfidenceHigh
	recommendation := "Merge: identical qualifiers; union of objects is equivalent; no intervening deny."
	if sensitive {
		confidence = model.ConfidenceLow
		recommendation = "Review: intervening deny/ordering may affect behavior; manual confirmation required."
	}

	return model.Proposal{
		ProposedName:      mergeName(names),
		SourceRules:       names,
		Positions:         positions,
		ApplicationsUnion: apps,
		ServicesUnion:     svcs,
		SourcesUnion:      srcs,
		DestinationsUnion: dsts,
		OrderSensitive:    sensitive,
		OrderReason:       reason,
		Confidence:        confidence,
		Recommendation:    recommendation,
	}, true
}

// mixesAnyAndEnumerated reports whether the group disagrees on
// wildcard-versus-enumerated in any of the four unioned dimensions.
func (a *Analyzer) mixesAnyAndEnumerated(group []int) bool {
	first := &a.dims[group[0]]
	for _, idx := range group[1:] {
		d := &a.dims[idx]
		if d.app.Universal() != first.app.Universal() ||
			d.svc.Universal() != first.svc.Universal() ||
			d.src.Universal() != first.src.Universal() ||
			d.dst.Universal() != first.dst.Universal() {
			return true
		}
	}
	return false
}

// orderSensitiveBetween scans the rules strictly between positions lo and
// hi for a deny/drop rule whose match surface intersects the proposed
// union on every dimension. Such a rule means collapsing the group to one
// position could change which traffic it blocks, so the merge is flagged
// for manual review. Intervening allow rules with narrower overlapping
// matches are deliberately not considered here; shadow detection reports
// coverage relationships separately.
func (a *Analyzer) orderSensitiveBetween(lo, hi int, union mergeUnion) (bool, string) {
	for i := range a.rules {
		r := &a.rules[i]
		if r.Position <= lo || r.Position >= hi {
			continue
		}
		if act := a.dims[i].action; act != model.ActionDeny && act != model.ActionDrop {
			continue
		}
		if a.intersectsUnion(i, union) {
			return true, fmt.Sprintf("Intervening deny/drop at position %d intersects proposed union", r.Position)
		}
	}
	return false, ""
}

// intersectsUnion reports whether rule i could match traffic the merged
// rule would match: every dimension intersects, the schedules are equal,
// and the rule's action is one the engine models.
func (a *Analyzer) intersectsUnion(i int, union mergeUnion) bool {
	d := &a.dims[i]
	return d.from.Intersects(union.from) &&
		d.to.Intersects(union.to) &&
		d.src.Intersects(union.src) &&
		d.dst.Intersects(union.dst) &&
		d.app.Intersects(union.app) &&
		d.svc.Intersects(union.svc) &&
		d.user.Intersects(union.user) &&
		d.urlcat.Intersects(union.urlcat) &&
		d.schedule == union.schedule &&
		(d.action == model.ActionAllow || d.action == model.ActionDeny || d.action == model.ActionDrop)
}

// mergeName derives a deterministic name from up to the first three
// member names, truncated to the 63-character PAN-OS rule name limit.
func mergeName(names []string) string {
	parts := names
	if len(parts) > 3 {
		parts = parts[:3]
	}
	name := "merge_of_" + strings.Join(parts, "_")
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}

func dedupSorted(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
