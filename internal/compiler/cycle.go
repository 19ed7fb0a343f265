package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/tdgen/internal/ir"
)

// CycleWarning describes a cycle in the class inheritance graph. Resolution
// of any record reaching the cycle fails with ErrCodeCyclicReference.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["A", "B", "A"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // always "error"
}

// AnalyzeClassCycles reports every cycle among declared classes.
//
// The algorithm:
//  1. Build class → base-class graph, keeping only declared classes
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or self-loops as a cycle
//
// An acyclic class graph returns an empty list. Output order is stable.
func AnalyzeClassCycles(classes []*ir.ClassDecl) []CycleWarning {
	if len(classes) == 0 {
		return []CycleWarning{}
	}

	graph := buildInheritanceGraph(classes)
	sccs := tarjanSCC(graph)

	warnings := []CycleWarning{}
	for _, scc := range sccs {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	slices.SortFunc(warnings, func(a, b CycleWarning) int {
		return strings.Compare(a.Path[0], b.Path[0])
	})
	return warnings
}

// inheritanceGraph maps class name → declared base class names.
type inheritanceGraph map[string][]string

func buildInheritanceGraph(classes []*ir.ClassDecl) inheritanceGraph {
	declared := make(map[string]bool, len(classes))
	for _, cls := range classes {
		declared[cls.Name] = true
	}

	graph := make(inheritanceGraph, len(classes))
	for _, cls := range classes {
		edges := []string{}
		for _, base := range cls.Bases {
			if declared[base.Name] && !slices.Contains(edges, base.Name) {
				edges = append(edges, base.Name)
			}
		}
		graph[cls.Name] = edges
	}
	return graph
}

func hasSelfLoop(node string, graph inheritanceGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in name order so results are deterministic.
func tarjanSCC(graph inheritanceGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root: pop its component
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)

	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

func cycleSCCToWarning(scc []string, graph inheritanceGraph) CycleWarning {
	if len(scc) == 1 {
		name := scc[0]
		return CycleWarning{
			Path:    []string{name, name},
			Message: fmt.Sprintf("class inherits from itself: %s → %s", name, name),
			Level:   "error",
		}
	}

	path := reconstructCyclePath(scc, graph)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("class inheritance cycle: %s", strings.Join(path, " → ")),
		Level:   "error",
	}
}

// reconstructCyclePath walks from the smallest member of the SCC along
// edges inside the SCC until it returns to the start.
func reconstructCyclePath(scc []string, graph inheritanceGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := slices.Min(scc)
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
