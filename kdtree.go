package img2ascii

import (
	"container/heap"
	"math"
	"slices"
)

// KdNode is a node in a KD-tree. Each node holds a point, the payload
// associated with it, and the axis along which its subtree is split.
type KdNode[T any] struct {
	Point       []float64
	Data        T
	Axis        int
	Left, Right *KdNode[T]
}

// KdTree is a static KD-tree for exact nearest-neighbour queries over
// D-dimensional points. It is immutable after construction, so concurrent
// queries need no locking.
type KdTree[T any] struct {
	root *KdNode[T]
	dims int
	size int
}

// Neighbor is a query result: the stored point, its payload and its
// Euclidean distance to the query.
type Neighbor[T any] struct {
	Point    []float64
	Data     T
	Distance float64
}

type kdEntry[T any] struct {
	point []float64
	data  T
}

// NewKdTree builds a KD-tree over points, pairing points[i] with data[i].
// All points must share the dimensionality of the first. Building from
// zero points fails with ErrEmptyAlphabet.
func NewKdTree[T any](points [][]float64, data []T) (*KdTree[T], error) {
	if len(points) == 0 {
		return nil, ErrEmptyAlphabet
	}
	if len(points) != len(data) {
		return nil, &DimensionMismatchError{Expected: len(points), Actual: len(data)}
	}

	dims := len(points[0])
	if dims == 0 {
		return nil, ErrNoSamplingPoints
	}
	entries := make([]kdEntry[T], len(points))
	for i, p := range points {
		if len(p) != dims {
			return nil, &DimensionMismatchError{Expected: dims, Actual: len(p)}
		}
		entries[i] = kdEntry[T]{point: slices.Clone(p), data: data[i]}
	}

	return &KdTree[T]{
		root: buildKdTree(entries, 0, dims),
		dims: dims,
		size: len(points),
	}, nil
}

// buildKdTree recursively constructs the tree by median split. At depth k
// the splitting axis is k mod dims; the median becomes the node and the
// strictly lower and upper halves become its children.
func buildKdTree[T any](entries []kdEntry[T], depth, dims int) *KdNode[T] {
	if len(entries) == 0 {
		return nil
	}

	axis := depth % dims
	if len(entries) == 1 {
		return &KdNode[T]{Point: entries[0].point, Data: entries[0].data, Axis: axis}
	}

	slices.SortStableFunc(entries, func(a, b kdEntry[T]) int {
		switch {
		case a.point[axis] < b.point[axis]:
			return -1
		case a.point[axis] > b.point[axis]:
			return 1
		}
		return 0
	})

	median := len(entries) / 2
	return &KdNode[T]{
		Point: entries[median].point,
		Data:  entries[median].data,
		Axis:  axis,
		Left:  buildKdTree(entries[:median], depth+1, dims),
		Right: buildKdTree(entries[median+1:], depth+1, dims),
	}
}

// Len returns the number of points in the tree.
func (t *KdTree[T]) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}

// Dimensions returns the dimensionality of the indexed points.
func (t *KdTree[T]) Dimensions() int {
	if t == nil {
		return 0
	}
	return t.dims
}

// FindNearest returns the stored point closest to target by Euclidean
// distance. It returns nil only for an empty tree. A target whose length
// differs from the tree's dimensionality fails with a
// *DimensionMismatchError.
func (t *KdTree[T]) FindNearest(target []float64) (*Neighbor[T], error) {
	if t == nil || t.root == nil {
		return nil, nil
	}
	if len(target) != t.dims {
		return nil, &DimensionMismatchError{Expected: t.dims, Actual: len(target)}
	}

	best := &Neighbor[T]{Distance: math.Inf(1)}
	t.root.nearestNeighbor(target, best)
	return best, nil
}

// nearestNeighbor descends first into the half-space containing target and
// visits the other half-space only when the splitting plane is closer than
// the best distance found so far.
func (node *KdNode[T]) nearestNeighbor(target []float64, best *Neighbor[T]) {
	if node == nil {
		return
	}

	if dist := euclidean(node.Point, target); dist < best.Distance {
		best.Point = node.Point
		best.Data = node.Data
		best.Distance = dist
	}

	axisDist := target[node.Axis] - node.Point[node.Axis]
	next, other := node.Right, node.Left
	if axisDist < 0 {
		next, other = node.Left, node.Right
	}

	next.nearestNeighbor(target, best)

	if math.Abs(axisDist) < best.Distance {
		other.nearestNeighbor(target, best)
	}
}

// neighborHeap is a max-heap on distance holding the current k best.
type neighborHeap[T any] []Neighbor[T]

func (h neighborHeap[T]) Len() int           { return len(h) }
func (h neighborHeap[T]) Less(i, j int) bool { return h[i].Distance > h[j].Distance }
func (h neighborHeap[T]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap[T]) Push(x any)        { *h = append(*h, x.(Neighbor[T])) }
func (h *neighborHeap[T]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// KNearest returns up to k stored points closest to target in ascending
// order of distance.
func (t *KdTree[T]) KNearest(target []float64, k int) ([]Neighbor[T], error) {
	if t == nil || t.root == nil || k <= 0 {
		return nil, nil
	}
	if len(target) != t.dims {
		return nil, &DimensionMismatchError{Expected: t.dims, Actual: len(target)}
	}

	pq := make(neighborHeap[T], 0, k)
	heap.Init(&pq)

	var search func(*KdNode[T])
	search = func(node *KdNode[T]) {
		if node == nil {
			return
		}

		dist := euclidean(node.Point, target)
		if pq.Len() < k {
			heap.Push(&pq, Neighbor[T]{Point: node.Point, Data: node.Data, Distance: dist})
		} else if dist < pq[0].Distance {
			heap.Pop(&pq)
			heap.Push(&pq, Neighbor[T]{Point: node.Point, Data: node.Data, Distance: dist})
		}

		axisDist := target[node.Axis] - node.Point[node.Axis]
		first, second := node.Right, node.Left
		if axisDist < 0 {
			first, second = node.Left, node.Right
		}

		search(first)

		if pq.Len() < k || math.Abs(axisDist) < pq[0].Distance {
			search(second)
		}
	}

	search(t.root)

	result := make([]Neighbor[T], pq.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(&pq).(Neighbor[T])
	}
	return result, nil
}

// euclidean returns the Euclidean distance between two equal-length vectors.
func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
