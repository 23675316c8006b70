package compliance

import (
	"fmt"
	"strings"
)

// GeneralCompliance is the sentinel tag for text no rule matches.
const GeneralCompliance = "General-Compliance"

// Rule maps trigger keywords to the standards they imply.
type Rule struct {
	Name     string
	Keywords []string
	Tags     []string
}

// Matches reports whether the lowercased text contains any trigger keyword.
func (r *Rule) Matches(lower string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Rules returns the built-in rules in evaluation order.
func Rules() []*Rule {
	return []*Rule{health(), safety(), security()}
}

// Get returns the built-in rule with the given name.
func Get(name string) (*Rule, error) {
	for _, r := range Rules() {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, fmt.Errorf("unknown compliance rule %q: valid rules are health, safety, security", name)
}

// Tags classifies text against every rule independently. Tags from all
// matching rules are concatenated in rule order without deduplication.
// The result is never empty.
func Tags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, r := range Rules() {
		if r.Matches(lower) {
			tags = append(tags, r.Tags...)
		}
	}
	if len(tags) == 0 {
		return []string{GeneralCompliance}
	}
	return tags
}

// Standards lists every tag Tags can emit, sentinel last.
func Standards() []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range Rules() {
		for _, t := range r.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return append(out, GeneralCompliance)
}

// Known reports whether tag is one of Standards.
func Known(tag string) bool {
	for _, s := range Standards() {
		if s == tag {
			return true
		}
	}
	return false
}
