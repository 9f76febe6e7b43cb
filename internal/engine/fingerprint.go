package engine

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"rulebase-advisor/internal/model"
)

// fingerprintKey collects the rule attributes a merge must not broaden.
// Sources, destinations, applications, and services are deliberately
// absent: those are exactly the fields a merge unions together.
type fingerprintKey struct {
	Action            string              `json:"action"`
	FromZones         []string            `json:"from"`
	ToZones           []string            `json:"to"`
	SourceUsers       []string            `json:"users"`
	URLCategories     []string            `json:"urlcat"`
	Schedule          string              `json:"schedule"`
	ProfileSetting    map[string][]string `json:"profiles"`
	LogSetting        string              `json:"log_setting"`
	LogStart          bool                `json:"log_start"`
	LogEnd            bool                `json:"log_end"`
	Disabled          bool                `json:"disabled"`
	NegateSource      bool                `json:"neg_src"`
	NegateDestination bool                `json:"neg_dst"`
	Location          string              `json:"prepost"`
}

// Fingerprint returns a stable equivalence key over a rule's
// non-broadening attributes. Two rules with equal fingerprints are
// merge candidates. The key is order-independent within each set and
// serializes the profile settings deterministically (encoding/json emits
// map keys sorted).
func Fingerprint(r model.Rule) string {
	key := fingerprintKey{
		Action:            strings.ToLower(r.Action),
		FromZones:         sortedCopy(r.FromZones),
		ToZones:           sortedCopy(r.ToZones),
		SourceUsers:       sortedCopy(r.SourceUsers),
		URLCategories:     sortedCopy(r.URLCategories),
		Schedule:          r.Schedule,
		ProfileSetting:    r.ProfileSetting,
		LogSetting:        r.LogSetting,
		LogStart:          r.LogStart,
		LogEnd:            r.LogEnd,
		Disabled:          r.Disabled,
		NegateSource:      r.NegateSource,
		NegateDestination: r.NegateDestination,
		Location:          r.Location,
	}
	raw, err := json.Marshal(key)
	if err != nil {
		// Only reachable with unmarshalable profile values, which the
		// model's plain string maps cannot produce.
		raw = []byte(key.Action)
	}
	sum := sha1.Sum(raw)
	return hex.EncodeToString(sum[:])
}

func sortedCopy(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}
