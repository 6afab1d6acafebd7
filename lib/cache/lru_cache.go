package cache

import "sync"

type node[K comparable, V any] struct {
	key  K
	val  V
	cost int64

	prev *node[K, V]
	next *node[K, V]
}

// LRU is a least recently used cache bounded by the total cost of its
// entries. It is safe for concurrent use.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int64
	used     int64
	costOf   func(V) int64
	cache    map[K]*node[K, V]

	left  *node[K, V]
	right *node[K, V]
}

// NewLRU holds entries while the sum of costOf over them stays within
// capacity. A value costing more than capacity is never stored. A nil
// costOf counts every entry as one.
func NewLRU[K comparable, V any](capacity int64, costOf func(V) int64) *LRU[K, V] {
	if costOf == nil {
		costOf = func(V) int64 { return 1 }
	}

	left, right := &node[K, V]{}, &node[K, V]{}

	left.next = right
	right.prev = left

	return &LRU[K, V]{
		left:     left,
		right:    right,
		capacity: capacity,
		costOf:   costOf,
		cache:    make(map[K]*node[K, V]),
	}
}

func (l *LRU[K, V]) Put(key K, value V) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n, exists := l.cache[key]; exists {
		l.drop(n)
	}

	cost := l.costOf(value)
	if cost > l.capacity {
		return
	}

	n := &node[K, V]{key: key, val: value, cost: cost}
	l.cache[key] = n
	l.used += cost
	l.pushBack(n)

	for l.used > l.capacity {
		l.drop(l.left.next)
	}
}

func (l *LRU[K, V]) Get(key K) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, exists := l.cache[key]
	if !exists {
		var zero V
		return zero, false
	}

	l.unlink(n)
	l.pushBack(n)

	return n.val, true
}

func (l *LRU[K, V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.cache)
}

// Used returns the summed cost of the cached entries.
func (l *LRU[K, V]) Used() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.used
}

// drop removes n from the list and the index. Callers hold mu.
func (l *LRU[K, V]) drop(n *node[K, V]) {
	l.unlink(n)
	l.used -= n.cost

	delete(l.cache, n.key)
}

func (l *LRU[K, V]) pushBack(n *node[K, V]) {
	prev, next := l.right.prev, l.right

	n.prev = prev
	n.next = next

	prev.next = n
	next.prev = n
}

func (l *LRU[K, V]) unlink(n *node[K, V]) {
	prev, next := n.prev, n.next

	prev.next = next
	next.prev = prev
}
