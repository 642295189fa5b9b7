package registry

import "sort"

// dependencyGraph tracks initializer dependency edges for cycle detection
// and topological ordering, grounded on the teacher's plugin dependency
// graph but stripped to plain string nodes since initializers have no
// version constraints to resolve.
type dependencyGraph struct {
	nodes    map[string]struct{}
	incoming map[string]map[string]struct{}
	outgoing map[string]map[string]struct{}
}

func newDependencyGraph() *dependencyGraph {
	return &dependencyGraph{
		nodes:    make(map[string]struct{}),
		incoming: make(map[string]map[string]struct{}),
		outgoing: make(map[string]map[string]struct{}),
	}
}

func (g *dependencyGraph) addNode(name string) {
	if _, exists := g.nodes[name]; exists {
		return
	}
	g.nodes[name] = struct{}{}
	g.incoming[name] = make(map[string]struct{})
	g.outgoing[name] = make(map[string]struct{})
}

func (g *dependencyGraph) addEdge(dependent, dependency string) {
	g.addNode(dependent)
	g.addNode(dependency)
	g.outgoing[dependent][dependency] = struct{}{}
	g.incoming[dependency][dependent] = struct{}{}
}

// detectCycle returns one cycle (as a node name slice) if present, else nil.
func (g *dependencyGraph) detectCycle() []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var path []string

	var cycle []string
	var dfs func(node string) bool
	dfs = func(node string) bool {
		visited[node] = true
		onStack[node] = true
		path = append(path, node)

		for dep := range g.outgoing[node] {
			if !visited[dep] {
				if dfs(dep) {
					return true
				}
			} else if onStack[dep] {
				idx := len(path) - 1
				for idx >= 0 && path[idx] != dep {
					idx--
				}
				if idx >= 0 {
					cycle = append([]string{}, path[idx:]...)
					return true
				}
			}
		}

		onStack[node] = false
		path = path[:len(path)-1]
		return false
	}

	for _, node := range g.sortedNodes() {
		if !visited[node] {
			if dfs(node) {
				break
			}
		}
	}
	return cycle
}

// topoSort returns nodes in dependency order (dependencies before dependents).
func (g *dependencyGraph) topoSort() ([]string, []string) {
	remaining := make(map[string]int, len(g.nodes))
	for node := range g.nodes {
		remaining[node] = len(g.outgoing[node])
	}

	var queue []string
	for node, deps := range remaining {
		if deps == 0 {
			queue = append(queue, node)
		}
	}
	sort.Strings(queue)

	result := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		dependents := g.dependents(current)
		for _, dependent := range dependents {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				queue = append(queue, dependent)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(g.nodes) {
		return result, g.detectCycle()
	}
	return result, nil
}

func (g *dependencyGraph) dependents(node string) []string {
	m, ok := g.incoming[node]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(m))
	for d := range m {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func (g *dependencyGraph) sortedNodes() []string {
	out := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
