package avl

import (
	"cmp"
	"iter"
)

// nilRef marks an absent child.
const nilRef int32 = -1

type node[K cmp.Ordered, V comparable] struct {
	key    K
	vals   valueSet[V]
	left   int32
	right  int32
	height int32
}

// Tree is an ordered multimap from K to an insertion-ordered set of V.
//
// The zero value is not usable; create trees with New.
type Tree[K cmp.Ordered, V comparable] struct {
	nodes []node[K, V]
	free  []int32
	root  int32
	keys  int
	pairs int
}

// New creates an empty tree.
func New[K cmp.Ordered, V comparable]() *Tree[K, V] {
	return &Tree[K, V]{root: nilRef}
}

// Len returns the number of distinct keys.
func (t *Tree[K, V]) Len() int {
	return t.keys
}

// Size returns the number of (key, value) associations.
func (t *Tree[K, V]) Size() int {
	return t.pairs
}

// Height returns the height of the tree. An empty tree has height 0.
func (t *Tree[K, V]) Height() int {
	return int(t.height(t.root))
}

// Insert adds v to the value set of key, creating the key if absent.
// It reports whether the association was added; duplicates are no-ops.
func (t *Tree[K, V]) Insert(key K, v V) bool {
	root, added := t.insert(t.root, key, v)
	t.root = root
	if added {
		t.pairs++
	}
	return added
}

// Remove deletes v from the value set of key. The key is dropped once its set
// becomes empty. It reports whether the association existed.
func (t *Tree[K, V]) Remove(key K, v V) bool {
	root, removed := t.remove(t.root, key, v)
	t.root = root
	if removed {
		t.pairs--
	}
	return removed
}

// Lookup returns a copy of the value set for key in insertion order, or nil.
func (t *Tree[K, V]) Lookup(key K) []V {
	i := t.find(key)
	if i == nilRef {
		return nil
	}
	return t.nodes[i].vals.values()
}

// Count returns the size of the value set for key.
func (t *Tree[K, V]) Count(key K) int {
	i := t.find(key)
	if i == nilRef {
		return 0
	}
	return t.nodes[i].vals.len()
}

// Contains reports whether v is associated with key.
func (t *Tree[K, V]) Contains(key K, v V) bool {
	i := t.find(key)
	return i != nilRef && t.nodes[i].vals.contains(v)
}

// Range yields every key in [lo, hi] in ascending order together with a copy
// of its value set. The sequence is lazy and may be iterated repeatedly; each
// iteration rescans the tree. The tree must not be mutated during iteration.
func (t *Tree[K, V]) Range(lo, hi K) iter.Seq2[K, []V] {
	return func(yield func(K, []V) bool) {
		if cmp.Compare(lo, hi) > 0 {
			return
		}
		t.walkRange(t.root, lo, hi, func(i int32) bool {
			n := &t.nodes[i]
			return yield(n.key, n.vals.values())
		})
	}
}

// RangeValues flattens Range into the values, ordered by key and then by
// insertion order within a key.
func (t *Tree[K, V]) RangeValues(lo, hi K) iter.Seq[V] {
	return func(yield func(V) bool) {
		if cmp.Compare(lo, hi) > 0 {
			return
		}
		t.walkRange(t.root, lo, hi, func(i int32) bool {
			return t.nodes[i].vals.each(yield)
		})
	}
}

// All yields every key in ascending order with a copy of its value set.
func (t *Tree[K, V]) All() iter.Seq2[K, []V] {
	return func(yield func(K, []V) bool) {
		t.walkAll(t.root, func(i int32) bool {
			n := &t.nodes[i]
			return yield(n.key, n.vals.values())
		})
	}
}

// Keys yields every key in ascending order.
func (t *Tree[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		t.walkAll(t.root, func(i int32) bool {
			return yield(t.nodes[i].key)
		})
	}
}

// Min returns the smallest key.
func (t *Tree[K, V]) Min() (K, bool) {
	var zero K
	i := t.root
	if i == nilRef {
		return zero, false
	}
	for t.nodes[i].left != nilRef {
		i = t.nodes[i].left
	}
	return t.nodes[i].key, true
}

// Max returns the largest key.
func (t *Tree[K, V]) Max() (K, bool) {
	var zero K
	i := t.root
	if i == nilRef {
		return zero, false
	}
	for t.nodes[i].right != nilRef {
		i = t.nodes[i].right
	}
	return t.nodes[i].key, true
}

func (t *Tree[K, V]) find(key K) int32 {
	i := t.root
	for i != nilRef {
		switch c := cmp.Compare(key, t.nodes[i].key); {
		case c < 0:
			i = t.nodes[i].left
		case c > 0:
			i = t.nodes[i].right
		default:
			return i
		}
	}
	return nilRef
}

func (t *Tree[K, V]) walkRange(i int32, lo, hi K, visit func(int32) bool) bool {
	if i == nilRef {
		return true
	}
	key := t.nodes[i].key
	if cmp.Compare(lo, key) < 0 {
		if !t.walkRange(t.nodes[i].left, lo, hi, visit) {
			return false
		}
	}
	if cmp.Compare(lo, key) <= 0 && cmp.Compare(key, hi) <= 0 {
		if !visit(i) {
			return false
		}
	}
	if cmp.Compare(key, hi) < 0 {
		return t.walkRange(t.nodes[i].right, lo, hi, visit)
	}
	return true
}

func (t *Tree[K, V]) walkAll(i int32, visit func(int32) bool) bool {
	if i == nilRef {
		return true
	}
	if !t.walkAll(t.nodes[i].left, visit) {
		return false
	}
	if !visit(i) {
		return false
	}
	return t.walkAll(t.nodes[i].right, visit)
}

// alloc may grow the arena; callers must not hold node pointers across it.
func (t *Tree[K, V]) alloc(key K, v V) int32 {
	n := node[K, V]{key: key, left: nilRef, right: nilRef, height: 1}
	n.vals.add(v)
	t.keys++
	if k := len(t.free); k > 0 {
		i := t.free[k-1]
		t.free = t.free[:k-1]
		t.nodes[i] = n
		return i
	}
	t.nodes = append(t.nodes, n)
	return int32(len(t.nodes) - 1) //nolint:gosec // arena is bounded by int32 refs
}

func (t *Tree[K, V]) release(i int32) {
	t.nodes[i] = node[K, V]{left: nilRef, right: nilRef}
	t.free = append(t.free, i)
	t.keys--
}

func (t *Tree[K, V]) height(i int32) int32 {
	if i == nilRef {
		return 0
	}
	return t.nodes[i].height
}

func (t *Tree[K, V]) fix(i int32) {
	n := &t.nodes[i]
	n.height = 1 + max(t.height(n.left), t.height(n.right))
}

func (t *Tree[K, V]) balance(i int32) int32 {
	return t.height(t.nodes[i].left) - t.height(t.nodes[i].right)
}

func (t *Tree[K, V]) rotateRight(y int32) int32 {
	x := t.nodes[y].left
	t.nodes[y].left = t.nodes[x].right
	t.nodes[x].right = y
	t.fix(y)
	t.fix(x)
	return x
}

func (t *Tree[K, V]) rotateLeft(x int32) int32 {
	y := t.nodes[x].right
	t.nodes[x].right = t.nodes[y].left
	t.nodes[y].left = x
	t.fix(x)
	t.fix(y)
	return y
}

// rebalance restores the height invariant at i and returns the new subtree root.
func (t *Tree[K, V]) rebalance(i int32) int32 {
	t.fix(i)
	switch bf := t.balance(i); {
	case bf > 1:
		if t.balance(t.nodes[i].left) < 0 {
			// left-right
			l := t.rotateLeft(t.nodes[i].left)
			t.nodes[i].left = l
		}
		return t.rotateRight(i)
	case bf < -1:
		if t.balance(t.nodes[i].right) > 0 {
			// right-left
			r := t.rotateRight(t.nodes[i].right)
			t.nodes[i].right = r
		}
		return t.rotateLeft(i)
	}
	return i
}

func (t *Tree[K, V]) insert(i int32, key K, v V) (int32, bool) {
	if i == nilRef {
		return t.alloc(key, v), true
	}
	switch c := cmp.Compare(key, t.nodes[i].key); {
	case c < 0:
		l, added := t.insert(t.nodes[i].left, key, v)
		t.nodes[i].left = l
		if !added {
			return i, false
		}
	case c > 0:
		r, added := t.insert(t.nodes[i].right, key, v)
		t.nodes[i].right = r
		if !added {
			return i, false
		}
	default:
		return i, t.nodes[i].vals.add(v)
	}
	return t.rebalance(i), true
}

func (t *Tree[K, V]) remove(i int32, key K, v V) (int32, bool) {
	if i == nilRef {
		return nilRef, false
	}
	switch c := cmp.Compare(key, t.nodes[i].key); {
	case c < 0:
		l, removed := t.remove(t.nodes[i].left, key, v)
		t.nodes[i].left = l
		if !removed {
			return i, false
		}
	case c > 0:
		r, removed := t.remove(t.nodes[i].right, key, v)
		t.nodes[i].right = r
		if !removed {
			return i, false
		}
	default:
		if !t.nodes[i].vals.remove(v) {
			return i, false
		}
		if t.nodes[i].vals.len() > 0 {
			return i, true
		}
		left, right := t.nodes[i].left, t.nodes[i].right
		switch {
		case left == nilRef:
			t.release(i)
			return right, true
		case right == nilRef:
			t.release(i)
			return left, true
		}
		// Splice the in-order successor into i's position.
		rest, succ := t.detachMin(right)
		t.nodes[succ].left = left
		t.nodes[succ].right = rest
		t.release(i)
		return t.rebalance(succ), true
	}
	return t.rebalance(i), true
}

// detachMin unlinks the minimum node of subtree i. It returns the rebalanced
// subtree root and the detached node.
func (t *Tree[K, V]) detachMin(i int32) (int32, int32) {
	if t.nodes[i].left == nilRef {
		return t.nodes[i].right, i
	}
	l, m := t.detachMin(t.nodes[i].left)
	t.nodes[i].left = l
	return t.rebalance(i), m
}
