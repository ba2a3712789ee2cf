package iconcache

import (
	"container/list"
	"sync"
)

// memoryCache is a least recently used set of images bounded by entry count and total byte cost.
type memoryCache struct {
	maxCount int
	maxCost  int

	mu    sync.Mutex
	cost  int
	order *list.List
	items map[string]*list.Element
}

type memoryEntry struct {
	key string
	img Image
}

func newMemoryCache(maxCount, maxCost int) *memoryCache {
	return &memoryCache{
		maxCount: maxCount,
		maxCost:  maxCost,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

func (m *memoryCache) get(key string) (Image, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		return Image{}, false
	}
	m.order.MoveToFront(e)
	return e.Value.(*memoryEntry).img, true
}

// add stores img under key and evicts the least recently used entries until both limits hold.
// It returns false if img alone exceeds the cost limit, in which case it is not kept.
func (m *memoryCache) add(key string, img Image) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	cost := len(img.Data)
	if e, ok := m.items[key]; ok {
		m.remove(e)
	}
	if cost > m.maxCost || m.maxCount <= 0 {
		return false
	}

	m.items[key] = m.order.PushFront(&memoryEntry{key: key, img: img})
	m.cost += cost

	for m.order.Len() > m.maxCount || m.cost > m.maxCost {
		m.remove(m.order.Back())
	}
	return true
}

func (m *memoryCache) remove(e *list.Element) {
	entry := m.order.Remove(e).(*memoryEntry)
	delete(m.items, entry.key)
	m.cost -= len(entry.img.Data)
}

func (m *memoryCache) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.order.Init()
	m.items = make(map[string]*list.Element)
	m.cost = 0
}

func (m *memoryCache) stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Stats{Entries: m.order.Len(), Cost: m.cost}
}
