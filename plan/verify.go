package plan

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	graphlib "github.com/dominikbraun/graph"

	"github.com/crossforge/buildchain/ninja"
)

// Verify checks the structural invariants of a finished ledger: step and
// rule names are unique, every implicit dependency references a step
// declared earlier, the dependency relation is acyclic, and no two steps
// that destructively reset the same directory are left as
// parallel-eligible siblings.
//
// Plan runs this on everything it emits; tests run it on hand-built
// ledgers as well.
func Verify(f ninja.File) error {
	rules := make(map[string]ninja.Rule)
	declared := make(map[string]bool)
	resets := make(map[string][]string)

	g := graphlib.New(graphlib.StringHash, graphlib.Directed(), graphlib.PreventCycles())

	for _, record := range f {
		switch rec := record.(type) {
		case ninja.Rule:
			if _, ok := rules[rec.Name]; ok {
				return fmt.Errorf("rule %q declared twice", rec.Name)
			}
			rules[rec.Name] = rec

		case ninja.Edge:
			if declared[rec.Out] {
				return fmt.Errorf("step %q declared twice", rec.Out)
			}
			rule, ok := rules[rec.Rule]
			if !ok {
				return fmt.Errorf("step %q references undeclared rule %q", rec.Out, rec.Rule)
			}
			if err := g.AddVertex(rec.Out); err != nil {
				return fmt.Errorf("failed to add step %q: %w", rec.Out, err)
			}
			for _, dep := range rec.Implicit {
				if !declared[dep] {
					return fmt.Errorf("step %q depends on step %q before its declaration", rec.Out, dep)
				}
				err := g.AddEdge(dep, rec.Out)
				if errors.Is(err, graphlib.ErrEdgeCreatesCycle) {
					return fmt.Errorf("dependency %q -> %q creates a cycle", dep, rec.Out)
				}
				if err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
					return fmt.Errorf("failed to add dependency %q -> %q: %w", dep, rec.Out, err)
				}
			}
			declared[rec.Out] = true

			for _, dir := range resetDirs(expandCommand(rule.Command, rec)) {
				resets[dir] = append(resets[dir], rec.Out)
			}
		}
	}

	return verifyResetOrdering(g, resets)
}

// verifyResetOrdering asserts that any two steps resetting the same
// directory are connected by a dependency path in one direction or the
// other. Two unordered resets of one directory could run concurrently and
// corrupt each other's work.
func verifyResetOrdering(g graphlib.Graph[string, string], resets map[string][]string) error {
	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return fmt.Errorf("failed to compute adjacency map: %w", err)
	}

	for dir, steps := range resets {
		for i := 0; i < len(steps); i++ {
			for j := i + 1; j < len(steps); j++ {
				if !reachable(adjacency, steps[i], steps[j]) && !reachable(adjacency, steps[j], steps[i]) {
					return fmt.Errorf("steps %q and %q both reset %q but are not ordered by a dependency", steps[i], steps[j], dir)
				}
			}
		}
	}
	return nil
}

func reachable(adjacency map[string]map[string]graphlib.Edge[string], from, to string) bool {
	visited := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == to {
			return true
		}
		for next := range adjacency[current] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

var commandVariable = regexp.MustCompile(`\$[a-zA-Z0-9_]+`)

// expandCommand substitutes an edge's local bindings (and $in/$out) into
// its rule's command template. Global variables stay symbolic; two
// commands reset the same directory exactly when the expanded strings
// name the same path.
func expandCommand(command string, e ninja.Edge) string {
	vars := make(map[string]string, len(e.Vars)+2)
	for _, v := range e.Vars {
		vars["$"+v.Name] = v.Value
	}
	vars["$in"] = strings.Join(e.Inputs, " ")
	vars["$out"] = e.Out

	return commandVariable.ReplaceAllStringFunc(command, func(token string) string {
		if value, ok := vars[token]; ok {
			return value
		}
		return token
	})
}

// resetDirs returns the directories a command destructively resets: the
// arguments of each "rm -rf" up to the next shell conjunction.
func resetDirs(command string) []string {
	var dirs []string
	rest := command
	for {
		i := strings.Index(rest, "rm -rf ")
		if i < 0 {
			return dirs
		}
		rest = rest[i+len("rm -rf "):]
		for _, token := range strings.Fields(rest) {
			if token == "&&" || token == ";" || token == "||" {
				break
			}
			dirs = append(dirs, token)
		}
	}
}
