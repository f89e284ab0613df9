package plan

import (
	"fmt"

	"github.com/crossforge/buildchain/ninja"
)

// Graph accumulates the step ledger while a plan is being constructed.
// It owns the uniqueness guarantees: a rule or step name is emitted at
// most once, variables are single-assignment, and every implicit
// dependency must reference a step declared earlier in the ledger. The
// graph is therefore acyclic by construction; no cycle detection happens
// at build time.
//
// Builder methods record the first violation and become no-ops afterwards;
// Finish surfaces it. This keeps the planner free of error plumbing on
// every append.
type Graph struct {
	records []ninja.Record
	rules   map[string]bool
	steps   map[string]bool
	vars    map[string]bool
	err     error
}

// NewGraph returns an empty step ledger.
func NewGraph() *Graph {
	return &Graph{
		rules: make(map[string]bool),
		steps: make(map[string]bool),
		vars:  make(map[string]bool),
	}
}

func (g *Graph) fail(format string, args ...any) {
	if g.err == nil {
		g.err = fmt.Errorf(format, args...)
	}
}

// Comment appends a comment line.
func (g *Graph) Comment(text string) {
	if g.err != nil {
		return
	}
	g.records = append(g.records, ninja.Comment{Text: text})
}

// Blank appends an empty line.
func (g *Graph) Blank() {
	if g.err != nil {
		return
	}
	g.records = append(g.records, ninja.Blank{})
}

// Variable appends a named binding. Bindings are single-assignment:
// redeclaring a name is an error. An empty value is skipped entirely,
// matching the behavior for unset optional settings.
func (g *Graph) Variable(name, value string) {
	if g.err != nil || value == "" {
		return
	}
	if g.vars[name] {
		g.fail("variable %q declared twice", name)
		return
	}
	g.vars[name] = true
	g.records = append(g.records, ninja.Variable{Name: name, Value: value})
}

// Rule appends a named command template.
func (g *Graph) Rule(name, command, description string) {
	if g.err != nil {
		return
	}
	if g.rules[name] {
		g.fail("rule %q declared twice", name)
		return
	}
	g.rules[name] = true
	g.records = append(g.records, ninja.Rule{Name: name, Command: command, Description: description})
}

// Build appends a build edge. The rule must already be declared, the
// output name must be new, and every implicit dependency must be the
// output of an earlier edge.
func (g *Graph) Build(e ninja.Edge) {
	if g.err != nil {
		return
	}
	if !g.rules[e.Rule] {
		g.fail("step %q references undeclared rule %q", e.Out, e.Rule)
		return
	}
	if g.steps[e.Out] {
		g.fail("step %q declared twice", e.Out)
		return
	}
	for _, dep := range e.Implicit {
		if !g.steps[dep] {
			g.fail("step %q depends on undeclared step %q", e.Out, dep)
			return
		}
	}
	g.steps[e.Out] = true
	g.records = append(g.records, e)
}

// Default appends the default-target statement. Each target must be a
// declared step.
func (g *Graph) Default(targets ...string) {
	if g.err != nil {
		return
	}
	for _, t := range targets {
		if !g.steps[t] {
			g.fail("default target %q is not a declared step", t)
			return
		}
	}
	g.records = append(g.records, ninja.Default{Targets: targets})
}

// Finish returns the accumulated ledger, or the first violation recorded
// by any builder method. No partial ledger is returned on failure.
func (g *Graph) Finish() (ninja.File, error) {
	if g.err != nil {
		return nil, g.err
	}
	return ninja.File(g.records), nil
}
