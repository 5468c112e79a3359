package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jmaas/s7plan/internal/plan"
)

// Pattern represents a compiled filter condition supporting substring and
// regex matching. Patterns wrapped in slashes, like /pump_\d+/, compile as
// regular expressions; anything else matches as a case-insensitive
// substring.
type Pattern struct {
	raw   string
	regex *regexp.Regexp
	lower string
}

// Compile transforms raw pattern strings into Pattern values.
func Compile(patterns []string) ([]Pattern, error) {
	result := make([]Pattern, 0, len(patterns))
	for _, raw := range patterns {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, "/") && strings.HasSuffix(raw, "/") && len(raw) >= 2 {
			expr := raw[1 : len(raw)-1]
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("compile regexp %q: %w", raw, err)
			}
			result = append(result, Pattern{raw: raw, regex: re})
			continue
		}
		result = append(result, Pattern{raw: raw, lower: strings.ToLower(raw)})
	}
	return result, nil
}

// Match reports whether the pattern matches the supplied string.
func (p Pattern) Match(s string) bool {
	if s == "" {
		return false
	}
	if p.regex != nil {
		return p.regex.MatchString(s)
	}
	return strings.Contains(strings.ToLower(s), p.lower)
}

// Plan returns a copy of the plan holding only the modules and tests that
// match. Empty pattern lists match everything; a module that loses all of
// its tests drops out entirely. The input plan is never mutated.
func Plan(p *plan.Plan, modulePatterns, testPatterns []Pattern) *plan.Plan {
	if len(modulePatterns) == 0 && len(testPatterns) == 0 {
		return p
	}

	out := &plan.Plan{Name: p.Name, Layouts: p.Layouts}
	for _, mod := range p.Modules {
		if len(modulePatterns) > 0 && !matchesAny(mod.Name, modulePatterns) {
			continue
		}
		filtered := make([]plan.Test, 0, len(mod.Tests))
		for _, tst := range mod.Tests {
			if len(testPatterns) > 0 && !matchesAny(tst.Name, testPatterns) {
				continue
			}
			filtered = append(filtered, tst)
		}
		if len(filtered) == 0 {
			continue
		}
		modCopy := mod
		modCopy.Tests = filtered
		out.Modules = append(out.Modules, modCopy)
	}
	return out
}

func matchesAny(name string, patterns []Pattern) bool {
	for _, pattern := range patterns {
		if pattern.Match(name) {
			return true
		}
	}
	return false
}
