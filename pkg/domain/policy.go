package domain

// Effect is what a matching rule does to the request.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// RuleConditions restricts when a rule matches. Every specified
// condition must hold; an empty list means "any". Action and resource
// entries are glob patterns: exact, "*", or a prefix before "*".
type RuleConditions struct {
	Principals   []string `json:"principals,omitempty"`
	Actions      []string `json:"actions,omitempty"`
	Resources    []string `json:"resources,omitempty"`
	RequireMFA   bool     `json:"require_mfa,omitempty"`
	MaxRiskScore *float64 `json:"max_risk_score,omitempty"`
}

// PolicyRule is one entry in the gate's rule set. Rules are immutable
// once loaded; the gate evaluates them sorted ascending by priority,
// first match wins, default deny.
type PolicyRule struct {
	ID         string         `json:"id"`
	Effect     Effect         `json:"effect"`
	Priority   int            `json:"priority"`
	Conditions RuleConditions `json:"conditions"`
}
