package molecule

// Unreachable marks atom pairs with no bond path between them, which happens
// for multi-fragment inputs such as salts written with a "." separator.
const Unreachable = -1

// DistanceMatrix computes all-pairs topological distances (shortest bond-path
// lengths) with one breadth-first search per atom.  The diagonal is zero and
// disconnected pairs are Unreachable.  Edge weights are uniform, so BFS gives
// exact shortest paths.
func (m *Molecule) DistanceMatrix() [][]int {
	n := m.NumAtoms()
	dist := make([][]int, n)
	queue := make([]int, 0, n)
	for src := 0; src < n; src++ {
		row := make([]int, n)
		for i := range row {
			row[i] = Unreachable
		}
		row[src] = 0
		queue = queue[:0]
		queue = append(queue, src)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, nb := range m.Neighbors(cur) {
				if row[nb] == Unreachable {
					row[nb] = row[cur] + 1
					queue = append(queue, nb)
				}
			}
		}
		dist[src] = row
	}
	return dist
}
