package classify

import "strings"

// FallbackLabel is assigned when no rule matches.
const FallbackLabel = "Other"

// Rule maps a path substring to a category label.
type Rule struct {
	Match string `yaml:"match" json:"match"`
	Label string `yaml:"label" json:"label"`
}

// DefaultRules is the built-in table, in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{Match: "README", Label: "Getting Started"},
		{Match: "CONTRIBUTING", Label: "Contributing"},
		{Match: "CHANGELOG", Label: "Changelog"},
		{Match: "LICENSE", Label: "Legal"},
		{Match: "docs", Label: "Documentation"},
		{Match: "blog", Label: "Blog Posts"},
	}
}

// Classifier assigns category labels by first matching rule.
type Classifier struct {
	rules    []Rule
	fallback string
}

// New builds a classifier over rules, checked in the given order. An empty
// fallback means FallbackLabel.
func New(rules []Rule, fallback string) *Classifier {
	if fallback == "" {
		fallback = FallbackLabel
	}
	return &Classifier{
		rules:    append([]Rule(nil), rules...),
		fallback: fallback,
	}
}

// Default returns a classifier over DefaultRules.
func Default() *Classifier {
	return New(DefaultRules(), FallbackLabel)
}

// Classify returns the label of the first rule whose substring occurs
// anywhere in relPath. Matching is case-sensitive.
func (c *Classifier) Classify(relPath string) string {
	for _, r := range c.rules {
		if strings.Contains(relPath, r.Match) {
			return r.Label
		}
	}
	return c.fallback
}

// Rules returns a copy of the rule table.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Fallback returns the label used when nothing matches.
func (c *Classifier) Fallback() string {
	return c.fallback
}
