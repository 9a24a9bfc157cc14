package sales

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"autosales-assistant-backend/internal/catalog"
	"autosales-assistant-backend/internal/locale"
)

// UpsellRule fires when every substring in Match occurs in the client's
// previous purchase (lower-cased).
type UpsellRule struct {
	Match   []string                 `yaml:"match"`
	Product string                   `yaml:"product"`
	Reason  map[locale.Locale]string `yaml:"reason"`
}

// Recommendation is the single upgrade suggested to a client.
type Recommendation struct {
	Product string
	Reason  string
}

// DefaultUpsellRules are evaluated in order; the first match wins.
var DefaultUpsellRules = []UpsellRule{
	{
		Match:   []string{"bentley", "continental"},
		Product: "Rolls-Royce Phantom",
		Reason: map[locale.Locale]string{
			locale.RU: "Следующий уровень роскоши после Bentley Continental",
			locale.EN: "The next level of luxury after a Bentley Continental",
		},
	},
	{
		Match:   []string{"ghost"},
		Product: "Rolls-Royce Cullinan",
		Reason: map[locale.Locale]string{
			locale.RU: "Универсальность SUV с той же роскошью",
			locale.EN: "SUV versatility with the same level of luxury",
		},
	},
}

// UpsellEngine holds an ordered rule table.
type UpsellEngine struct {
	rules []UpsellRule
}

func NewUpsellEngine(rules []UpsellRule) *UpsellEngine {
	normalized := make([]UpsellRule, 0, len(rules))
	for _, r := range rules {
		match := make([]string, 0, len(r.Match))
		for _, m := range r.Match {
			if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
				match = append(match, m)
			}
		}
		if len(match) == 0 || r.Product == "" {
			continue
		}
		r.Match = match
		normalized = append(normalized, r)
	}
	return &UpsellEngine{rules: normalized}
}

type upsellFile struct {
	Rules []UpsellRule `yaml:"rules"`
}

// LoadUpsellRules reads an ordered rule table from YAML.
func LoadUpsellRules(path string) ([]UpsellRule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f upsellFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode upsell rules %s: %w", path, err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("upsell rules %s: no rules", path)
	}
	return f.Rules, nil
}

// Recommend returns the first matching rule's suggestion, or false when the
// client has no previous purchase or nothing matches.
func (e *UpsellEngine) Recommend(p catalog.ClientProfile, loc locale.Locale) (Recommendation, bool) {
	prev := strings.ToLower(strings.TrimSpace(p.PreviousPurchase))
	if prev == "" {
		return Recommendation{}, false
	}
	for _, r := range e.rules {
		if matchesAll(prev, r.Match) {
			return Recommendation{Product: r.Product, Reason: r.reason(loc)}, true
		}
	}
	return Recommendation{}, false
}

func (r UpsellRule) reason(loc locale.Locale) string {
	if s, ok := r.Reason[loc]; ok {
		return s
	}
	for _, l := range locale.All {
		if s, ok := r.Reason[l]; ok {
			return s
		}
	}
	return ""
}

func matchesAll(s string, needles []string) bool {
	for _, n := range needles {
		if !strings.Contains(s, n) {
			return false
		}
	}
	return true
}
