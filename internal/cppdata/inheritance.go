package cppdata

import "sort"

// ClassNode is one class in the inheritance graph
type ClassNode struct {
	Name    string   // Fully qualified class name
	Bases   []string // Direct base classes
	Derived []string // Classes deriving directly from this one
}

// InheritanceGraph tracks base-class edges between class entities
type InheritanceGraph struct {
	nodes map[string]*ClassNode
}

// NewInheritanceGraph creates an empty graph
func NewInheritanceGraph() *InheritanceGraph {
	return &InheritanceGraph{
		nodes: make(map[string]*ClassNode),
	}
}

// addClasses records every class of d and its class bases
func (g *InheritanceGraph) addClasses(d *Data) {
	for _, td := range d.Types {
		if !td.IsClass() {
			continue
		}
		g.AddClass(td.Name)
		for _, base := range td.Class.Bases {
			if base.IsClass() {
				g.AddBase(td.Name, base.Base.Name)
			}
		}
	}
}

// AddClass adds a class to the graph
func (g *InheritanceGraph) AddClass(name string) {
	g.ensure(name)
}

// AddBase records that class derives from base
func (g *InheritanceGraph) AddBase(class, base string) {
	from := g.ensure(class)
	to := g.ensure(base)

	if !contains(from.Bases, base) {
		from.Bases = append(from.Bases, base)
	}
	if !contains(to.Derived, class) {
		to.Derived = append(to.Derived, class)
	}
}

func (g *InheritanceGraph) ensure(name string) *ClassNode {
	node, exists := g.nodes[name]
	if !exists {
		node = &ClassNode{Name: name}
		g.nodes[name] = node
	}
	return node
}

// AllBases returns every class the given class transitively derives from,
// in depth-first order
func (g *InheritanceGraph) AllBases(name string) []string {
	visited := make(map[string]bool)
	var result []string

	var visit func(string)
	visit = func(n string) {
		node, exists := g.nodes[n]
		if !exists {
			return
		}
		for _, base := range node.Bases {
			if visited[base] {
				continue
			}
			visited[base] = true
			result = append(result, base)
			visit(base)
		}
	}

	visit(name)
	return result
}

// TopologicalOrder returns classes with bases before derived classes. When
// the graph has a cycle, it returns the classes that could not be ordered.
func (g *InheritanceGraph) TopologicalOrder() ([]string, []string) {
	inDegree := make(map[string]int, len(g.nodes))
	for name, node := range g.nodes {
		inDegree[name] = len(node.Bases)
	}

	queue := make([]string, 0)
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	result := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		derived := append([]string(nil), g.nodes[current].Derived...)
		sort.Strings(derived)
		for _, d := range derived {
			inDegree[d]--
			if inDegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}

	if len(result) == len(g.nodes) {
		return result, nil
	}

	var cyclic []string
	for name, degree := range inDegree {
		if degree > 0 {
			cyclic = append(cyclic, name)
		}
	}
	sort.Strings(cyclic)
	return result, cyclic
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
