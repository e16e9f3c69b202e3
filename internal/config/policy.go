package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aescanero/awo/pkg/domain"
)

// LoadPolicyRules reads the gate's rule set from a JSON file. An empty
// path returns no rules, leaving the gate in its default-deny posture.
func LoadPolicyRules(path string) ([]domain.PolicyRule, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var rules []domain.PolicyRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}

	for i, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("policy file %s: rule %d: id is required", path, i)
		}
		if r.Effect != domain.EffectAllow && r.Effect != domain.EffectDeny {
			return nil, fmt.Errorf("policy file %s: rule %s: effect must be allow or deny", path, r.ID)
		}
	}

	return rules, nil
}
