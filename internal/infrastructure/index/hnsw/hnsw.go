// Package hnsw implements a hierarchical navigable small world graph for
// approximate nearest-neighbor search over fingerprint vectors.  The index is
// built once from a finite batch and then queried; it is deterministic under
// a fixed seed and not safe for concurrent mutation.
package hnsw

import (
	"container/heap"
	"fmt"
	"math"
	"math/rand"

	"github.com/turtacn/ChemSplit-QC/pkg/errors"
)

// Space computes the distance between two vectors.  Implementations must be
// symmetric and non-negative with zero self-distance.
type Space interface {
	Distance(a, b []float64) float64
}

// Config holds the graph construction and search parameters.
type Config struct {
	// M is the target connectivity of a freshly inserted node.
	M int
	// Mmax and Mmax0 cap the connections kept per node on upper layers and
	// layer zero respectively.
	Mmax  int
	Mmax0 int
	// EfConstruction is the candidate-list width during insertion.
	EfConstruction int
	// EfSearch is the candidate-list width during queries; raised to k when a
	// query asks for more neighbors.
	EfSearch int
	// Ml is the level-assignment multiplier, conventionally 1/ln(M).
	Ml float64
	// Seed fixes the level-assignment randomness so that repeated builds over
	// the same input produce the same graph.
	Seed int64
}

// DefaultConfig returns the standard parameterisation.
func DefaultConfig() Config {
	return Config{
		M:              16,
		Mmax:           16,
		Mmax0:          32,
		EfConstruction: 200,
		EfSearch:       64,
		Ml:             1 / math.Log(16),
		Seed:           1,
	}
}

type node struct {
	vector []float64
	// links[l] lists the neighbor node ids on layer l.
	links [][]int
}

// Index is the navigable small world graph.
type Index struct {
	cfg   Config
	space Space
	rng   *rand.Rand

	nodes    []node
	ep       int // entry point node id
	maxLevel int
}

// Result is one query hit.
type Result struct {
	ID       int
	Distance float64
}

// New returns an empty index over the given metric space.
func New(cfg Config, space Space) *Index {
	if cfg.Ml == 0 {
		cfg.Ml = 1 / math.Log(float64(cfg.M))
	}
	return &Index{
		cfg:   cfg,
		space: space,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		ep:    -1,
	}
}

// Len returns the number of indexed vectors.
func (ix *Index) Len() int { return len(ix.nodes) }

// Build inserts every vector in order.  Node ids equal input row positions.
func (ix *Index) Build(vectors [][]float64) error {
	for i, v := range vectors {
		if err := ix.Insert(v); err != nil {
			return errors.Wrap(err, errors.CodeIndexBuildFailed,
				fmt.Sprintf("insert failed at row %d", i))
		}
	}
	return nil
}

// Insert adds one vector to the graph.
func (ix *Index) Insert(vec []float64) error {
	if len(ix.nodes) > 0 && len(vec) != len(ix.nodes[0].vector) {
		return errors.Newf(errors.CodeDimensionMismatch,
			"vector has %d dimensions, index holds %d", len(vec), len(ix.nodes[0].vector))
	}

	level := ix.randomLevel()
	id := len(ix.nodes)
	ix.nodes = append(ix.nodes, node{
		vector: vec,
		links:  make([][]int, level+1),
	})

	if ix.ep < 0 {
		ix.ep = id
		ix.maxLevel = level
		return nil
	}

	// Greedy descent through layers above the new node's top level.
	cur := ix.ep
	curDist := ix.space.Distance(vec, ix.nodes[cur].vector)
	for l := ix.maxLevel; l > level; l-- {
		cur, curDist = ix.greedyStep(vec, cur, curDist, l)
	}

	// Connect on each shared layer, nearest first.
	for l := min(level, ix.maxLevel); l >= 0; l-- {
		top := ix.searchLayer(vec, cur, ix.cfg.EfConstruction, l)
		neighbors := ix.selectNearest(top, ix.cfg.M)
		for _, nb := range neighbors {
			ix.connect(id, nb.node, l)
			ix.connect(nb.node, id, l)
		}
		if len(neighbors) > 0 {
			cur = neighbors[0].node
		}
	}

	if level > ix.maxLevel {
		ix.maxLevel = level
		ix.ep = id
	}
	return nil
}

// Search returns the k nearest indexed vectors to vec, nearest first.
func (ix *Index) Search(vec []float64, k int) ([]Result, error) {
	if ix.ep < 0 {
		return nil, errors.New(errors.CodeIndexBuildFailed, "search on an empty index")
	}
	if len(vec) != len(ix.nodes[0].vector) {
		return nil, errors.Newf(errors.CodeDimensionMismatch,
			"query has %d dimensions, index holds %d", len(vec), len(ix.nodes[0].vector))
	}

	cur := ix.ep
	curDist := ix.space.Distance(vec, ix.nodes[cur].vector)
	for l := ix.maxLevel; l > 0; l-- {
		cur, curDist = ix.greedyStep(vec, cur, curDist, l)
	}

	ef := ix.cfg.EfSearch
	if ef < k {
		ef = k
	}
	top := ix.searchLayer(vec, cur, ef, 0)
	nearest := ix.selectNearest(top, k)

	out := make([]Result, len(nearest))
	for i, it := range nearest {
		out[i] = Result{ID: it.node, Distance: it.distance}
	}
	return out, nil
}

// greedyStep moves to the closest neighbor on layer l until no improvement.
func (ix *Index) greedyStep(vec []float64, cur int, curDist float64, l int) (int, float64) {
	for scan := true; scan; {
		scan = false
		for _, nb := range ix.linksAt(cur, l) {
			d := ix.space.Distance(vec, ix.nodes[nb].vector)
			if d < curDist {
				cur, curDist = nb, d
				scan = true
			}
		}
	}
	return cur, curDist
}

// searchLayer runs the beam search on one layer and returns up to ef
// candidates as a max-heap.
func (ix *Index) searchLayer(vec []float64, entry, ef, level int) *priorityQueue {
	visited := make(map[int]bool, ef*4)
	visited[entry] = true

	entryItem := &item{node: entry, distance: ix.space.Distance(vec, ix.nodes[entry].vector)}

	candidates := &priorityQueue{}
	heap.Init(candidates)
	heap.Push(candidates, entryItem)

	top := &priorityQueue{descending: true}
	heap.Init(top)
	heap.Push(top, entryItem)

	for candidates.Len() > 0 {
		candidate := heap.Pop(candidates).(*item)
		if candidate.distance > top.top().distance {
			break
		}
		for _, nb := range ix.linksAt(candidate.node, level) {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			d := ix.space.Distance(vec, ix.nodes[nb].vector)
			if top.Len() < ef {
				it := &item{node: nb, distance: d}
				heap.Push(top, it)
				heap.Push(candidates, it)
			} else if d < top.top().distance {
				it := &item{node: nb, distance: d}
				heap.Push(top, it)
				heap.Pop(top)
				heap.Push(candidates, it)
			}
		}
	}
	return top
}

// selectNearest drains the max-heap and keeps the m nearest, nearest first.
func (ix *Index) selectNearest(top *priorityQueue, m int) []*item {
	for top.Len() > m {
		heap.Pop(top)
	}
	out := make([]*item, top.Len())
	for i := top.Len() - 1; i >= 0; i-- {
		out[i] = heap.Pop(top).(*item)
	}
	return out
}

// connect links from->to on the given layer, trimming to the per-layer cap by
// keeping the closest connections.
func (ix *Index) connect(from, to, level int) {
	if from == to || level >= len(ix.nodes[from].links) {
		return
	}
	links := append(ix.nodes[from].links[level], to)

	max := ix.cfg.Mmax
	if level == 0 {
		max = ix.cfg.Mmax0
	}
	if len(links) > max {
		trim := &priorityQueue{descending: true}
		heap.Init(trim)
		for _, nb := range links {
			heap.Push(trim, &item{
				node:     nb,
				distance: ix.space.Distance(ix.nodes[from].vector, ix.nodes[nb].vector),
			})
		}
		kept := ix.selectNearest(trim, max)
		links = links[:0]
		for _, it := range kept {
			links = append(links, it.node)
		}
	}
	ix.nodes[from].links[level] = links
}

func (ix *Index) linksAt(id, level int) []int {
	if level >= len(ix.nodes[id].links) {
		return nil
	}
	return ix.nodes[id].links[level]
}

// randomLevel draws the layer for a new node from the standard exponential
// level distribution.
func (ix *Index) randomLevel() int {
	u := ix.rng.Float64()
	if u == 0 {
		u = math.SmallestNonzeroFloat64
	}
	level := int(math.Floor(-math.Log(u) * ix.cfg.Ml))
	// Layers beyond this depth add no routing value at realistic sizes.
	if level > 32 {
		level = 32
	}
	return level
}
