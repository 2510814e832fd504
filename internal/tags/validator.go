package tags

import (
	"fmt"
	"sort"

	"malstats/pkg/models"
)

// Policy says which statuses must be tagged, must be untagged, and have their
// tags checked against the rule set. Statuses are held as phases so one
// policy serves both anime and manga.
type Policy struct {
	Enabled        bool
	MustBeTagged   []models.Phase
	MustBeUntagged []models.Phase
	ApplyTagRules  []models.Phase
}

// ParsePolicy builds a Policy from status names such as "Watching",
// "Plan to Read" or "Planned".
func ParsePolicy(enabled bool, mustBeTagged, mustBeUntagged, applyTagRules []string) (Policy, error) {
	var err error
	p := Policy{Enabled: enabled}
	if p.MustBeTagged, err = parsePhases(mustBeTagged); err != nil {
		return Policy{}, fmt.Errorf("must be tagged: %w", err)
	}
	if p.MustBeUntagged, err = parsePhases(mustBeUntagged); err != nil {
		return Policy{}, fmt.Errorf("must be untagged: %w", err)
	}
	if p.ApplyTagRules, err = parsePhases(applyTagRules); err != nil {
		return Policy{}, fmt.Errorf("apply tag rules: %w", err)
	}
	return p, nil
}

func parsePhases(names []string) ([]models.Phase, error) {
	out := make([]models.Phase, 0, len(names))
	for _, n := range names {
		p, ok := models.ParsePhase(n)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", n)
		}
		out = append(out, p)
	}
	return out, nil
}

func contains(phases []models.Phase, p models.Phase) bool {
	for _, v := range phases {
		if v == p {
			return true
		}
	}
	return false
}

// Validate returns the sorted, distinct titles of records that break the
// policy. A disabled policy flags nothing, and so does an empty rule set for
// the combination check. Records are never modified.
func Validate[T models.Record](records []T, policy Policy, rules *Rules) []string {
	if !policy.Enabled {
		return []string{}
	}

	flagged := make(map[string]struct{})
	for _, r := range records {
		base := r.Base()
		phase := base.Status.Phase()
		tagged := base.Tagged()

		switch {
		case !tagged && contains(policy.MustBeTagged, phase):
		case tagged && contains(policy.MustBeUntagged, phase):
		case tagged && rules.Len() > 0 && contains(policy.ApplyTagRules, phase) && !rules.Allows(base.Tags):
		default:
			continue
		}
		flagged[r.Title()] = struct{}{}
	}

	out := make([]string, 0, len(flagged))
	for title := range flagged {
		out = append(out, title)
	}
	sort.Strings(out)
	return out
}
