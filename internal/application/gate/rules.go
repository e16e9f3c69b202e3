package gate

import (
	"sort"
	"strings"

	"github.com/aescanero/awo/pkg/domain"
)

// matcherKind tags a compiled action/resource pattern.
type matcherKind int

const (
	matchExact matcherKind = iota
	matchAny
	matchPrefix
)

// matcher is one compiled glob pattern: exact, "*", or the prefix
// before the first "*". Compiled once at load, never re-parsed per
// request.
type matcher struct {
	kind  matcherKind
	value string
}

func compilePattern(pattern string) matcher {
	if pattern == "*" {
		return matcher{kind: matchAny}
	}
	if i := strings.Index(pattern, "*"); i >= 0 {
		return matcher{kind: matchPrefix, value: pattern[:i]}
	}
	return matcher{kind: matchExact, value: pattern}
}

func (m matcher) matches(s string) bool {
	switch m.kind {
	case matchAny:
		return true
	case matchPrefix:
		return strings.HasPrefix(s, m.value)
	default:
		return m.value == s
	}
}

// compiledRule is a PolicyRule with its conditions pre-compiled.
type compiledRule struct {
	rule       domain.PolicyRule
	principals map[string]struct{} // empty = any
	actions    []matcher           // empty = any
	resources  []matcher           // empty = any
}

// compileRules sorts a copy of the rule set ascending by priority
// (stable, so equal priorities keep declaration order) and compiles
// every condition.
func compileRules(rules []domain.PolicyRule) []compiledRule {
	sorted := make([]domain.PolicyRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	compiled := make([]compiledRule, 0, len(sorted))
	for _, r := range sorted {
		cr := compiledRule{rule: r}
		if len(r.Conditions.Principals) > 0 {
			cr.principals = make(map[string]struct{}, len(r.Conditions.Principals))
			for _, p := range r.Conditions.Principals {
				cr.principals[p] = struct{}{}
			}
		}
		for _, a := range r.Conditions.Actions {
			cr.actions = append(cr.actions, compilePattern(a))
		}
		for _, res := range r.Conditions.Resources {
			cr.resources = append(cr.resources, compilePattern(res))
		}
		compiled = append(compiled, cr)
	}
	return compiled
}

// matches reports whether every specified condition holds for the
// request. Unspecified conditions always hold.
func (c *compiledRule) matches(req *domain.AdmissionRequest) bool {
	if c.principals != nil {
		if _, ok := c.principals[req.PrincipalID]; !ok {
			return false
		}
	}
	if len(c.actions) > 0 && !anyMatches(c.actions, req.Action) {
		return false
	}
	if len(c.resources) > 0 && !anyMatches(c.resources, req.Resource) {
		return false
	}
	if c.rule.Conditions.RequireMFA && !req.Context.MFAPassed {
		return false
	}
	if c.rule.Conditions.MaxRiskScore != nil && req.Context.RiskScore > *c.rule.Conditions.MaxRiskScore {
		return false
	}
	return true
}

func anyMatches(ms []matcher, s string) bool {
	for _, m := range ms {
		if m.matches(s) {
			return true
		}
	}
	return false
}
