package config

import "sort"

// detectCycle returns the addresses participating in a dependency cycle,
// or nil if no cycle exists. Disabled resources and references to them
// are ignored, matching how the engine builds its graph.
func detectCycle(resources []Resource) []string {
	enabled := make(map[string]bool, len(resources))
	for _, resource := range resources {
		if resource.Enabled {
			enabled[resource.Address().String()] = true
		}
	}

	graph := make(map[string][]string, len(enabled))
	for _, resource := range resources {
		key := resource.Address().String()
		if !enabled[key] {
			continue
		}
		deps := make([]string, 0, len(resource.DependsOn))
		for _, ref := range resource.DependsOn {
			addr, err := ResolveDependsOn(ref, resource.Device)
			if err != nil {
				continue
			}
			if enabled[addr.String()] {
				deps = append(deps, addr.String())
			}
		}
		graph[key] = deps
	}

	visiting := make(map[string]bool, len(enabled))
	visited := make(map[string]bool, len(enabled))
	var stack []string

	var cycle []string
	var dfs func(string) bool
	dfs = func(node string) bool {
		visiting[node] = true
		stack = append(stack, node)

		for _, dep := range graph[node] {
			if !visited[dep] {
				if visiting[dep] {
					idx := indexOf(stack, dep)
					if idx >= 0 {
						cycle = append([]string{}, stack[idx:]...)
						cycle = append(cycle, dep)
					}
					return true
				}
				if dfs(dep) {
					return true
				}
			}
		}

		visiting[node] = false
		visited[node] = true
		stack = stack[:len(stack)-1]
		return false
	}

	keys := make([]string, 0, len(enabled))
	for key := range enabled {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if visited[key] {
			continue
		}
		if dfs(key) {
			break
		}
	}

	return cycle
}

func indexOf(slice []string, target string) int {
	for i, v := range slice {
		if v == target {
			return i
		}
	}
	return -1
}
