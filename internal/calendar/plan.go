package calendar

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
)

// DefaultPlan returns the London & Paris trip the planner ships with:
// London from 5 to 25 July 2025, with four days in Paris and a Eurostar
// travel day on either side.
func DefaultPlan() Plan {
	return Plan{
		Start: date(2025, time.July, 5),
		End:   date(2025, time.July, 25),
		Base:  Rule{Title: "A Day in London", City: "London", Icon: "🇬🇧"},
		Rules: []Rule{
			{
				From:  date(2025, time.July, 15),
				To:    date(2025, time.July, 18),
				Title: "A Day in Paris",
				City:  "Paris",
				Icon:  "🇫🇷",
			},
			{
				From:  date(2025, time.July, 14),
				Title: "Travel Day: London to Paris",
				City:  "Travel",
				Icon:  "🚄",
				Notes: "Taking the Eurostar from St. Pancras International to Gare du Nord.",
			},
			{
				From:  date(2025, time.July, 19),
				Title: "Travel Day: Paris to London",
				City:  "Travel",
				Icon:  "🚄",
				Notes: "Taking the Eurostar from Gare du Nord back to St. Pancras International.",
			},
		},
	}
}

// planFile is the YAML representation of a Plan. Dates use the day id
// layout ("2006-01-02").
type planFile struct {
	Start string     `yaml:"start"`
	End   string     `yaml:"end"`
	Base  ruleFile   `yaml:"base"`
	Rules []ruleFile `yaml:"rules"`
}

type ruleFile struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Title string `yaml:"title"`
	City  string `yaml:"city"`
	Icon  string `yaml:"icon"`
	Notes string `yaml:"notes"`
}

// LoadPlan reads a trip plan from the YAML file at path.
// An empty path returns DefaultPlan.
func LoadPlan(path string) (Plan, error) {
	if path == "" {
		return DefaultPlan(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("calendar.LoadPlan: %w", err)
	}
	p, err := ParsePlan(b)
	if err != nil {
		return Plan{}, fmt.Errorf("calendar.LoadPlan: %s: %w", path, err)
	}
	return p, nil
}

// ParsePlan decodes a YAML trip plan and checks that it generates a
// non-empty calendar.
func ParsePlan(b []byte) (Plan, error) {
	var f planFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Plan{}, fmt.Errorf("%w: decode plan: %v", domain.ErrValidation, err)
	}

	var (
		p   Plan
		err error
	)
	if p.Start, err = parseDate("start", f.Start); err != nil {
		return Plan{}, err
	}
	if p.End, err = parseDate("end", f.End); err != nil {
		return Plan{}, err
	}
	if p.Base, err = f.Base.rule(); err != nil {
		return Plan{}, err
	}
	for i, rf := range f.Rules {
		r, err := rf.rule()
		if err != nil {
			return Plan{}, fmt.Errorf("rule %d: %w", i, err)
		}
		if r.From.IsZero() {
			return Plan{}, fmt.Errorf("%w: rule %d: from is required", domain.ErrValidation, i)
		}
		p.Rules = append(p.Rules, r)
	}

	if _, err := Generate(p); err != nil {
		return Plan{}, err
	}
	return p, nil
}

func (rf ruleFile) rule() (Rule, error) {
	from, err := parseDate("from", rf.From)
	if err != nil {
		return Rule{}, err
	}
	to, err := parseDate("to", rf.To)
	if err != nil {
		return Rule{}, err
	}
	return Rule{From: from, To: to, Title: rf.Title, City: rf.City, Icon: rf.Icon, Notes: rf.Notes}, nil
}

// parseDate parses an optional "2006-01-02" field; empty yields the zero time.
func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(domain.DayIDLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %q is not a date", domain.ErrValidation, field, s)
	}
	return t, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
