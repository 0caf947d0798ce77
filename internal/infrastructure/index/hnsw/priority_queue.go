package hnsw

// ------------------------------
// Priority Queue Implementation
// ------------------------------

// item is a candidate node with its distance to the query vector.
type item struct {
	node     int
	distance float64
}

// priorityQueue is a container/heap backed queue over candidates.  With
// descending=false it is a min-heap (pop nearest first, used for the search
// frontier); with descending=true it is a max-heap (pop farthest first, used
// to cap the result set at ef elements).
type priorityQueue struct {
	items      []*item
	descending bool
}

func (pq *priorityQueue) Len() int { return len(pq.items) }

func (pq *priorityQueue) Less(i, j int) bool {
	if pq.descending {
		return pq.items[i].distance > pq.items[j].distance
	}
	return pq.items[i].distance < pq.items[j].distance
}

func (pq *priorityQueue) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
}

func (pq *priorityQueue) Push(x interface{}) {
	pq.items = append(pq.items, x.(*item))
}

func (pq *priorityQueue) Pop() interface{} {
	old := pq.items
	n := len(old)
	if n == 0 {
		return nil
	}
	it := old[n-1]
	pq.items = old[:n-1]
	return it
}

// top returns the root without removing it.
func (pq *priorityQueue) top() *item {
	if len(pq.items) == 0 {
		return nil
	}
	return pq.items[0]
}
