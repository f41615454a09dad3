package summarize

import (
	"container/list"
	"sync"

	"newsbrief/internal/domain"
)

const defaultCacheMaxEntries = 10

// resultCache is a small LRU over finished summaries. Entries have no
// expiry; they live until evicted by capacity.
type resultCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
}

type resultCacheEntry struct {
	key    string
	result domain.SummaryResult
}

func newResultCache(maxEntries int) *resultCache {
	if maxEntries <= 0 {
		return nil
	}

	return &resultCache{
		entries:    make(map[string]*list.Element, maxEntries),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

func (c *resultCache) get(key string) (domain.SummaryResult, bool) {
	if c == nil || key == "" {
		return domain.SummaryResult{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return domain.SummaryResult{}, false
	}

	entry, ok := elem.Value.(*resultCacheEntry)
	if !ok {
		return domain.SummaryResult{}, false
	}

	c.order.MoveToFront(elem)

	return entry.result, true
}

func (c *resultCache) set(key string, result domain.SummaryResult) {
	if c == nil || key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry, castOk := elem.Value.(*resultCacheEntry)
		if !castOk {
			return
		}

		entry.result = result
		c.order.MoveToFront(elem)

		return
	}

	elem := c.order.PushFront(&resultCacheEntry{key: key, result: result})
	c.entries[key] = elem

	c.enforceSizeLimitLocked()
}

func (c *resultCache) enforceSizeLimitLocked() {
	for len(c.entries) > c.maxEntries {
		elem := c.order.Back()
		if elem == nil {
			return
		}
		c.removeElement(elem)
	}
}

func (c *resultCache) removeElement(elem *list.Element) {
	entry, ok := elem.Value.(*resultCacheEntry)
	if !ok {
		return
	}

	delete(c.entries, entry.key)
	c.order.Remove(elem)
}
