package hierarchy

import (
	"context"
	"fmt"
	"strings"

	"github.com/BaSui01/orgflow/types"
)

// CycleMember is the context the oracle receives for a person inside a cycle.
type CycleMember struct {
	Name           string `json:"name"`
	Title          string `json:"title"`
	Project        string `json:"project"`
	CurrentManager string `json:"current_manager"`
	Reason         string `json:"reason"`
}

// Candidate is a person outside the cycle who could become someone's manager.
type Candidate struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Project string `json:"project"`
}

// Oracle proposes corrected manager edges for the members of one cycle. The
// returned assertions should cover exactly the cycle members; replacement
// managers must be known people or empty, and at least one edge must change.
type Oracle interface {
	Resolve(ctx context.Context, members []CycleMember, candidates []Candidate) ([]Assertion, error)
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(ctx context.Context, members []CycleMember, candidates []Candidate) ([]Assertion, error)

// Resolve implements Oracle.
func (f OracleFunc) Resolve(ctx context.Context, members []CycleMember, candidates []Candidate) ([]Assertion, error) {
	return f(ctx, members, candidates)
}

// ResolutionError reports that one cycle could not be resolved.
type ResolutionError struct {
	Cycle    Cycle
	Attempts int
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve cycle %s after %d attempt(s): %v", e.Cycle, e.Attempts, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// UnresolvedCycleError reports cycles still present after the pass budget.
type UnresolvedCycleError struct {
	Cycles []Cycle
	Passes int
}

func (e *UnresolvedCycleError) Error() string {
	parts := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		parts[i] = c.String()
	}
	if e.Passes == 0 {
		return fmt.Sprintf("%d unresolved cycle(s): %s", len(e.Cycles), strings.Join(parts, "; "))
	}
	return fmt.Sprintf("%d cycle(s) remain after %d pass(es): %s", len(e.Cycles), e.Passes, strings.Join(parts, "; "))
}

// Unwrap exposes the UNRESOLVED_CYCLE code to types.GetErrorCode and errors.Is.
func (e *UnresolvedCycleError) Unwrap() error {
	return types.NewError(types.ErrUnresolvedCycle, "hierarchy still contains cycles")
}

// Change records one applied correction.
type Change struct {
	Name   string `json:"name"`
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// applyResolution checks the oracle's answer against the contract and returns the
// corrected assertions for the cycle members in cycle order. Answers for people
// outside the cycle are returned as ignored; members the oracle left out keep their
// current edge.
func applyResolution(cycle Cycle, current map[string]Assertion, known func(string) bool, proposed []Assertion) (updated []Assertion, changes []Change, ignored []string, err error) {
	byName := make(map[string]Assertion, len(proposed))
	for _, p := range proposed {
		if !cycle.Contains(p.Name) {
			ignored = append(ignored, p.Name)
			continue
		}
		byName[p.Name] = p
	}

	for _, name := range cycle {
		cur := current[name]
		p, ok := byName[name]
		if !ok {
			updated = append(updated, cur)
			continue
		}
		if p.Manager != "" && !known(p.Manager) {
			return nil, nil, ignored, types.Errorf(types.ErrOracleUnknownManager,
				"replacement manager %q for %q is not a known person", p.Manager, name)
		}
		updated = append(updated, Assertion{Name: name, Manager: p.Manager, Reason: p.Reason})
		if p.Manager != cur.Manager {
			changes = append(changes, Change{Name: name, From: cur.Manager, To: p.Manager, Reason: p.Reason})
		}
	}

	if len(changes) == 0 {
		return nil, nil, ignored, types.Errorf(types.ErrOracleNoop,
			"resolution for cycle %s changes no edge", cycle)
	}
	return updated, changes, ignored, nil
}
