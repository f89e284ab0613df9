// Package ninja holds the ordered ledger of records a plan emits and
// serializes it into ninja build-description syntax. The ledger is the
// wire format between the planner and the external executor; declaration
// order is preserved so generated files are reproducible.
package ninja

import (
	"fmt"
	"io"
	"strings"
)

// Record is one line group of a build description: a comment, a variable
// assignment, a rule, a build edge, a default statement or a blank line.
type Record interface {
	encode(b *strings.Builder)
}

// File is an ordered sequence of records.
type File []Record

// Encode writes the file in ninja syntax.
func (f File) Encode(w io.Writer) error {
	var b strings.Builder
	for _, r := range f {
		r.encode(&b)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Comment renders as a '#' line.
type Comment struct {
	Text string
}

func (c Comment) encode(b *strings.Builder) {
	fmt.Fprintf(b, "# %s\n", c.Text)
}

// Blank renders as an empty line. The planner uses it to keep the
// generated file readable, mirroring the grouping of its stages.
type Blank struct{}

func (Blank) encode(b *strings.Builder) {
	b.WriteByte('\n')
}

// Variable is a named string binding. Later records reference it through
// '$name' substitution tokens, which are expanded by the executor, never
// by this package.
type Variable struct {
	Name  string
	Value string
}

func (v Variable) encode(b *strings.Builder) {
	fmt.Fprintf(b, "%s = %s\n", v.Name, v.Value)
}

// Rule is a named command template shared by one or more build edges.
type Rule struct {
	Name        string
	Command     string
	Description string
}

func (r Rule) encode(b *strings.Builder) {
	fmt.Fprintf(b, "rule %s\n", r.Name)
	fmt.Fprintf(b, "  command = %s\n", r.Command)
	if r.Description != "" {
		fmt.Fprintf(b, "  description = %s\n", r.Description)
	}
}

// Edge is one build statement: an output produced by a rule from explicit
// inputs, ordered after its implicit dependencies. Pool selects the
// execution pool; PoolConsole serializes steps that must not interleave.
type Edge struct {
	Out      string
	Rule     string
	Inputs   []string
	Implicit []string
	Pool     string
	Vars     []Variable
}

// PoolConsole is the serialized execution pool. Steps tagged with it share
// the console and never run concurrently with each other.
const PoolConsole = "console"

func (e Edge) encode(b *strings.Builder) {
	fmt.Fprintf(b, "build %s: %s", e.Out, e.Rule)
	for _, in := range e.Inputs {
		b.WriteByte(' ')
		b.WriteString(in)
	}
	if len(e.Implicit) > 0 {
		b.WriteString(" |")
		for _, dep := range e.Implicit {
			b.WriteByte(' ')
			b.WriteString(dep)
		}
	}
	b.WriteByte('\n')
	if e.Pool != "" {
		fmt.Fprintf(b, "  pool = %s\n", e.Pool)
	}
	for _, v := range e.Vars {
		fmt.Fprintf(b, "  %s = %s\n", v.Name, v.Value)
	}
}

// Default declares the targets built when the executor is invoked without
// arguments.
type Default struct {
	Targets []string
}

func (d Default) encode(b *strings.Builder) {
	fmt.Fprintf(b, "default %s\n", strings.Join(d.Targets, " "))
}
