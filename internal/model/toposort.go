package model

import (
	"fmt"
	"sort"
)

// topoSort returns node indices in dependency order.
//
// Nodes are by index in [0, n). depsFn(i) yields indices that must come
// before i.
//
// The result is deterministic: when multiple nodes are available, the
// smallest index is picked. When a cycle exists, the nodes on cycles are
// returned as the second result.
func topoSort(n int, depsFn func(i int) []int) (order, cyclic []int, err error) {
	if n <= 0 {
		return nil, nil, nil
	}

	indeg := make([]int, n)
	out := make([][]int, n)

	for i := range n {
		for _, d := range depsFn(i) {
			if d < 0 || d >= n {
				return nil, nil, fmt.Errorf("dependency index out of range: %d depends on %d", i, d)
			}

			indeg[i]++
			out[d] = append(out[d], i)
		}
	}

	for i := range out {
		sort.Ints(out[i])
	}

	var ready []int

	for i := range n {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	order = make([]int, 0, n)

	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]

		order = append(order, i)
		for _, j := range out[i] {
			indeg[j]--
			if indeg[j] == 0 {
				// Insert while keeping ready sorted.
				k := sort.SearchInts(ready, j)
				ready = append(ready, 0)
				copy(ready[k+1:], ready[k:])
				ready[k] = j
			}
		}
	}

	if len(order) == n {
		return order, nil, nil
	}

	// Peel off blocked nodes that no other blocked node depends on: they wait
	// on a cycle without being part of it.
	blocked := make([]bool, n)
	for i := range n {
		blocked[i] = indeg[i] > 0
	}

	for changed := true; changed; {
		changed = false

		for i := range n {
			if !blocked[i] {
				continue
			}

			feeds := false
			for _, j := range out[i] {
				if blocked[j] {
					feeds = true

					break
				}
			}

			if !feeds {
				blocked[i] = false
				changed = true
			}
		}
	}

	for i := range n {
		if blocked[i] {
			cyclic = append(cyclic, i)
		}
	}

	return order, cyclic, nil
}

// sortStructs orders structs so that every struct comes after the structs
// its fields contain. Arrays do not break containment.
func sortStructs(structs []*Struct) (ordered, cyclic []*Struct, err error) {
	index := make(map[*Struct]int, len(structs))
	for i, s := range structs {
		index[s] = i
	}

	order, rest, err := topoSort(len(structs), func(i int) []int {
		var deps []int

		for _, f := range structs[i].Fields {
			leaf := f.Type.Leaf()
			if leaf.Kind != KindStruct {
				continue
			}

			if j, ok := index[leaf.Struct]; ok {
				deps = append(deps, j)
			}
		}

		return deps
	})
	if err != nil {
		return nil, nil, err
	}

	for _, i := range order {
		ordered = append(ordered, structs[i])
	}

	for _, i := range rest {
		cyclic = append(cyclic, structs[i])
	}

	return ordered, cyclic, nil
}
