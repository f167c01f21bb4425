package dag

import (
	"fmt"
	"sort"
	"strings"
)

// BuildLevels uses Kahn's algorithm to group nodes by dependency level.
// Nodes within a level depend only on earlier levels and keep their
// declaration order. Returns an error naming the unresolved nodes if a
// cycle exists. Dependencies must reference declared nodes.
func BuildLevels(nodes []TaskNode) ([][]string, error) {
	order := make(map[string]int, len(nodes))
	for i, n := range nodes {
		order[n.ID] = i
	}

	inDegree := make(map[string]int, len(nodes))
	dependents := make(map[string][]string)
	for _, n := range nodes {
		for _, dep := range n.DependsOn {
			if _, ok := order[dep]; !ok {
				return nil, fmt.Errorf("node %q depends on unknown node %q", n.ID, dep)
			}
			inDegree[n.ID]++
			dependents[dep] = append(dependents[dep], n.ID)
		}
	}

	var queue []string
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	var levels [][]string
	visited := 0

	for len(queue) > 0 {
		levels = append(levels, queue)
		visited += len(queue)

		var next []string
		for _, id := range queue {
			for _, dep := range dependents[id] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		sort.Slice(next, func(i, j int) bool { return order[next[i]] < order[next[j]] })
		queue = next
	}

	if visited != len(nodes) {
		var stuck []string
		for _, n := range nodes {
			if inDegree[n.ID] > 0 {
				stuck = append(stuck, n.ID)
			}
		}
		return nil, fmt.Errorf("cycle detected among nodes [%s]", strings.Join(stuck, ", "))
	}

	return levels, nil
}
