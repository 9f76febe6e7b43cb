package model

// Action values the analysis engine reasons about. A rule whose action is
// outside this set is treated as never matching in the shadow and
// order-sensitivity checks; that is a defined outcome, not an error.
const (
	ActionAllow = "allow"
	ActionDeny  = "deny"
	ActionDrop  = "drop"
)

const (
	ConfidenceHigh = "High"
	ConfidenceLow  = "Low"
)

// Rule is one normalized security policy rule. Position is the 1-based
// evaluation order on the device; providers must keep positions strictly
// increasing, since that ordering is what the shadow and order-sensitivity
// checks reason about. Gaps are tolerated and preserved verbatim.
//
// A list value of "any" (or an empty list) means the rule matches
// everything in that dimension.
type Rule struct {
	Name     string
	Position int
	Action   string

	FromZones     []string
	ToZones       []string
	Sources       []string
	Destinations  []string
	Applications  []string
	Services      []string
	SourceUsers   []string
	URLCategories []string

	Schedule          string
	LogSetting        string
	LogStart          bool
	LogEnd            bool
	ProfileSetting    map[string][]string
	Disabled          bool
	NegateSource      bool
	NegateDestination bool
	Location          string // "pre"/"post" on Panorama, empty on a single firewall

	// Reporting-only attributes. The matching and fingerprint logic never
	// consults these.
	Tags               []string
	RuleType           string
	SourceDevices      []string
	DestinationDevices []string
	AppsSeen           string
	DaysNoNewApps      string
	Created            string
	Modified           string

	// Usage overlay, merged by rule name. A nil HitsTotal means the
	// counter was not measured, which is not the same as zero hits.
	HitsTotal    *uint64
	LastHit      string
	CounterSince string
}

// HitInfo is one rule's usage counters as reported by the device.
type HitInfo struct {
	Total uint64
	Last  string
	Since string
}

// ShadowFinding records one shadowing relationship: the shadowing rule
// sits strictly earlier in the rulebase and fully covers the shadowed one.
type ShadowFinding struct {
	ShadowedRule      string
	ShadowedPosition  int
	ShadowingRule     string
	ShadowingPosition int
	Reason            string
	Recommendation    string
}

// Proposal is a candidate merge of two or more rules that share a
// non-broadening fingerprint. The union fields hold the merged match
// objects, sorted; the remaining qualifiers are identical across the
// group by construction.
type Proposal struct {
	ProposedName      string
	SourceRules       []string
	Positions         []int
	ApplicationsUnion []string
	ServicesUnion     []string
	SourcesUnion      []string
	DestinationsUnion []string
	OrderSensitive    bool
	OrderReason       string
	Confidence        string
	Recommendation    string
}

// Report aggregates one analysis run. Unused preserves input order and
// Shadows detection order (earlier position ascending, then later
// position ascending). Proposal order carries no meaning; consumers
// wanting a stable report order should sort by position themselves.
type Report struct {
	Unused    []Rule
	Shadows   []ShadowFinding
	Proposals []Proposal
}
