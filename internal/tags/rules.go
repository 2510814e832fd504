// Package tags checks list entries against tagging conventions: which
// statuses must or must not carry tags, and which tag combinations are allowed.
package tags

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Rules is the set of allowed tag combinations, each held in canonical form.
type Rules struct {
	combos map[string]struct{}
}

// Canonical lower-cases and trims every comma-separated token and sorts them.
func Canonical(tags string) []string {
	parts := strings.Split(tags, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.ToLower(strings.TrimSpace(p))
	}
	sort.Strings(out)
	return out
}

func canonicalKey(tags string) string {
	return strings.Join(Canonical(tags), "\x00")
}

// NewRules builds a rule set from combination lines. Blank lines are skipped.
func NewRules(lines ...string) *Rules {
	r := &Rules{combos: make(map[string]struct{})}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		r.combos[canonicalKey(line)] = struct{}{}
	}
	return r
}

// LoadRules reads one allowed combination per line.
func LoadRules(rd io.Reader) (*Rules, error) {
	var lines []string
	sc := bufio.NewScanner(rd)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tag rules: %w", err)
	}
	return NewRules(lines...), nil
}

// LoadRulesFile reads a rules file. A missing file yields an empty rule set
// and found=false.
func LoadRulesFile(path string) (rules *Rules, found bool, err error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewRules(), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("open tag rules: %w", err)
	}
	defer f.Close()

	rules, err = LoadRules(f)
	if err != nil {
		return nil, false, err
	}
	return rules, true, nil
}

func (r *Rules) Len() int {
	if r == nil {
		return 0
	}
	return len(r.combos)
}

// Allows reports whether the tag string, once canonicalised, is an allowed
// combination.
func (r *Rules) Allows(tags string) bool {
	if r == nil {
		return false
	}
	_, ok := r.combos[canonicalKey(tags)]
	return ok
}
