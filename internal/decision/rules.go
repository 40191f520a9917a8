package decision

import (
	"fmt"
	"os"
	"sort"

	"github.com/google/cel-go/cel"
	"gopkg.in/yaml.v3"

	"claimflow/internal/domain"
)

// ruleCostLimit bounds the evaluation cost of a single review rule.
const ruleCostLimit = 100000

// RuleDefinition is a review rule as written in the rules file.
type RuleDefinition struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
	Reason     string `yaml:"reason"`
}

type rulesFile struct {
	Rules []RuleDefinition `yaml:"rules"`
}

// ReviewRule is a compiled rule that routes a claim to manual review when it matches.
type ReviewRule struct {
	RuleDefinition
	program cel.Program
}

// RuleSet evaluates review rules in file order.
type RuleSet struct {
	rules []*ReviewRule
}

// Len returns the number of compiled rules.
func (s *RuleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// LoadReviewRules reads and compiles a YAML rules file.
func LoadReviewRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading review rules: %w", err)
	}
	return ParseReviewRules(data)
}

// ParseReviewRules compiles rules from YAML.
func ParseReviewRules(data []byte) (*RuleSet, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing review rules: %w", err)
	}
	return CompileReviewRules(f.Rules)
}

// CompileReviewRules type-checks every expression against the claim facts.
func CompileReviewRules(defs []RuleDefinition) (*RuleSet, error) {
	env, err := cel.NewEnv(
		cel.Variable("claim", cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("creating CEL environment: %w", err)
	}

	set := &RuleSet{}
	seen := map[string]bool{}
	for i, d := range defs {
		if d.ID == "" {
			d.ID = fmt.Sprintf("rule-%d", i+1)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("duplicate review rule id %q", d.ID)
		}
		seen[d.ID] = true
		if d.Reason == "" {
			d.Reason = "Claim flagged for manual review"
		}

		ast, issues := env.Compile(d.Expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("compiling review rule %s: %w", d.ID, issues.Err())
		}
		if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
			return nil, fmt.Errorf("review rule %s must evaluate to bool, got %s", d.ID, out)
		}
		prg, err := env.Program(ast, cel.CostLimit(ruleCostLimit))
		if err != nil {
			return nil, fmt.Errorf("building review rule %s: %w", d.ID, err)
		}
		set.rules = append(set.rules, &ReviewRule{RuleDefinition: d, program: prg})
	}
	return set, nil
}

// FirstMatch returns the first rule whose expression is true, or nil.
func (s *RuleSet) FirstMatch(facts map[string]any) (*ReviewRule, error) {
	for _, r := range s.rules {
		out, _, err := r.program.Eval(map[string]any{"claim": facts})
		if err != nil {
			return nil, fmt.Errorf("evaluating review rule %s: %w", r.ID, err)
		}
		matched, ok := out.Value().(bool)
		if !ok {
			return nil, fmt.Errorf("review rule %s returned %T, want bool", r.ID, out.Value())
		}
		if matched {
			return r, nil
		}
	}
	return nil, nil
}

// NewFacts builds the variables exposed to review rules.
func NewFacts(successes []domain.DocumentOutcome, total float64) map[string]any {
	types := map[string]bool{}
	diagnoses := map[string]bool{}
	procedures := map[string]bool{}
	bills := 0
	for _, o := range successes {
		types[string(o.Document.Type())] = true
		if b, ok := o.Document.(domain.BillDocument); ok {
			bills++
			for _, c := range b.DiagnosisCodes {
				diagnoses[c] = true
			}
			for _, c := range b.ProcedureCodes {
				procedures[c] = true
			}
		}
	}
	return map[string]any{
		"total_amount":    total,
		"document_types":  sortedKeys(types),
		"document_count":  len(successes),
		"bill_count":      bills,
		"diagnosis_codes": sortedKeys(diagnoses),
		"procedure_codes": sortedKeys(procedures),
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
