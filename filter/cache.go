package filter

import (
	"container/list"
	"sync"

	"github.com/expr-lang/expr/vm"
)

// programCache is a thread-safe LRU of compiled expressions keyed by source text
type programCache struct {
	size      int
	evictList *list.List
	items     map[string]*list.Element
	mu        sync.Mutex
}

// entry is stored in the cache
type entry struct {
	key     string
	program *vm.Program
}

// newProgramCache creates a new LRU cache with the given size
func newProgramCache(size int) *programCache {
	return &programCache{
		size:      size,
		evictList: list.New(),
		items:     make(map[string]*list.Element),
	}
}

// Get retrieves a program from the cache
func (c *programCache) Get(key string) (*vm.Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, exists := c.items[key]
	if !exists {
		return nil, false
	}

	// Move to front (most recently used)
	c.evictList.MoveToFront(node)
	return node.Value.(*entry).program, true
}

// Put adds or updates a program in the cache
func (c *programCache) Put(key string, program *vm.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, exists := c.items[key]; exists {
		c.evictList.MoveToFront(node)
		node.Value.(*entry).program = program
		return
	}

	node := c.evictList.PushFront(&entry{key: key, program: program})
	c.items[key] = node

	if c.evictList.Len() > c.size {
		oldest := c.evictList.Back()
		c.evictList.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
	}
}

// Len returns the number of cached programs
func (c *programCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.evictList.Len()
}
