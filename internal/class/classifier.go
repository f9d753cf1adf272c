package class

import "github.com/danielpatrickdp/metalaw/internal/resource"

// #region rules

// Rule is one entry of the ordered classification list.
type Rule struct {
	Name  string
	Match func(v resource.Vector) bool
	Class Class
}

// FallbackRule names the default applied when no rule matches.
const FallbackRule = "fallback"

// DefaultRules returns the classification rules in evaluation order.
// The ranges overlap; order is the only tie-break.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:  "high-structure-moderate-density",
			Match: func(v resource.Vector) bool { return v.S() > 0.5 && v.D() < 0.5 },
			Class: GrammarStructural,
		},
		{
			Name:  "high-structure-short-memory",
			Match: func(v resource.Vector) bool { return v.S() > 0.6 && v.M() < 0.05 },
			Class: FastPropagation,
		},
		{
			Name:  "long-memory",
			Match: func(v resource.Vector) bool { return v.M() > 0.08 },
			Class: SlowMemory,
		},
		{
			Name:  "low-structure-high-density",
			Match: func(v resource.Vector) bool { return v.S() < 0.3 && v.D() > 0.5 },
			Class: DenseDynamical,
		},
	}
}

// #endregion

// #region classifier

// Classifier evaluates rules in order and returns the first match.
type Classifier struct {
	rules    []Rule
	fallback Class
}

// Match records which rule decided a classification. Index equals the
// number of rules when the fallback applied.
type Match struct {
	Index int
	Rule  string
	Class Class
}

// NewClassifier builds the standard classifier.
func NewClassifier() *Classifier {
	return NewClassifierWithRules(DefaultRules(), GrammarStructural)
}

// NewClassifierWithRules builds a classifier over a private copy of rules.
func NewClassifierWithRules(rules []Rule, fallback Class) *Classifier {
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &Classifier{rules: cp, fallback: fallback}
}

// Classify returns the class of v. It never fails.
func (c *Classifier) Classify(v resource.Vector) Class {
	return c.Explain(v).Class
}

// Explain is Classify plus the deciding rule.
func (c *Classifier) Explain(v resource.Vector) Match {
	for i, r := range c.rules {
		if r.Match(v) {
			return Match{Index: i, Rule: r.Name, Class: r.Class}
		}
	}
	return Match{Index: len(c.rules), Rule: FallbackRule, Class: c.fallback}
}

// Rules returns a copy of the rule list in evaluation order.
func (c *Classifier) Rules() []Rule {
	cp := make([]Rule, len(c.rules))
	copy(cp, c.rules)
	return cp
}

// #endregion
