package booking

import "strings"

type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeWaitlist  Outcome = "waitlist"
	OutcomeRegret    Outcome = "regret"
)

// Rule maps a raw seat status to an outcome. Match receives the status
// trimmed and lower-cased.
type Rule struct {
	Name    string
	Match   func(status string) bool
	Outcome Outcome
}

// Policy classifies seat status text. Rules are tried in order and the first
// match wins; unmatched text falls back to regret.
type Policy struct {
	rules    []Rule
	fallback Outcome
}

func contains(token string) func(string) bool {
	return func(status string) bool { return strings.Contains(status, token) }
}

func baseRules() []Rule {
	return []Rule{
		{Name: "empty", Match: func(s string) bool { return s == "" }, Outcome: OutcomeRegret},
		{Name: "available", Match: contains("available"), Outcome: OutcomeConfirmed},
		{Name: "regret", Match: contains("regret"), Outcome: OutcomeRegret},
		{Name: "waitlist", Match: func(s string) bool {
			return strings.Contains(s, "waitlist") || strings.Contains(s, "wl")
		}, Outcome: OutcomeWaitlist},
	}
}

// NewPolicy builds the default rule list with extra rules appended after the
// built-in ones and before the fallback.
func NewPolicy(extra ...Rule) *Policy {
	return &Policy{
		rules:    append(baseRules(), extra...),
		fallback: OutcomeRegret,
	}
}

// Rules returns a copy of the ordered rule list.
func (p *Policy) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	copy(out, p.rules)
	return out
}

func (p *Policy) Decide(status string) Outcome {
	normalized := strings.ToLower(strings.TrimSpace(status))
	for _, rule := range p.rules {
		if rule.Match(normalized) {
			return rule.Outcome
		}
	}
	return p.fallback
}

var defaultPolicy = NewPolicy()

// DecideOutcome classifies status with the default policy. Any text
// mentioning "available" is confirmed, even "0 Available".
func DecideOutcome(status string) Outcome {
	return defaultPolicy.Decide(status)
}
