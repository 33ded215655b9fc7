package spaceland

import (
	"container/list"
	"context"
	"fmt"
	"sync"
)

// IndexCache keeps built point indexes with LRU eviction.
//
// Building a PointIndex reads every record of a layer's geometry stream, so
// repeated viewport queries over the same layers benefit from keeping the
// indexes around. Memory use is estimated from the number of indexed points.
//
// Example:
//
//	cache := spaceland.NewIndexCache(64 * 1024 * 1024) // 64MB
//
//	for _, entry := range catalog.Query(viewport, spaceland.QueryOptions{}) {
//	    idx, err := cache.Get(ctx, entry.Name, opts)
//	    if err != nil {
//	        return err
//	    }
//	    hits := idx.Query(viewport)
//	    ...
//	}
type IndexCache struct {
	maxMemory  int64 // Maximum memory in bytes, 0 for unlimited
	usedMemory int64
	indexes    map[string]*cacheEntry
	lru        *list.List // Most recent at front
	hits       int
	misses     int
	mu         sync.Mutex
}

type cacheEntry struct {
	name       string
	index      *PointIndex
	memorySize int64
	element    *list.Element
}

// CacheStats holds cache counters.
type CacheStats struct {
	Indexes    int   // Number of indexes currently cached
	UsedMemory int64 // Estimated memory usage in bytes
	MaxMemory  int64 // Maximum memory limit in bytes
	Hits       int   // Lookups served from the cache
	Misses     int   // Lookups that built an index
}

// NewIndexCache creates a cache with the given memory limit in bytes. A
// limit of 0 never evicts.
func NewIndexCache(maxMemoryBytes int64) *IndexCache {
	return &IndexCache{
		maxMemory: maxMemoryBytes,
		indexes:   make(map[string]*cacheEntry),
		lru:       list.New(),
	}
}

// Get returns the point index of the named layer, building it from
// name.shp on a miss. Indexes too large for the cache are returned without
// being cached.
func (c *IndexCache) Get(ctx context.Context, name string, opts OpenOptions) (*PointIndex, error) {
	name = LayerName(name)

	if idx, ok := c.lookup(name); ok {
		return idx, nil
	}

	shp, err := OpenShapefile(ctx, name+".shp", opts)
	if err != nil {
		return nil, err
	}
	defer shp.Close()

	idx, err := BuildPointIndex(shp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if err := c.Add(name, idx); err != nil {
		opts.logger().Debug("index not cached", "layer", name, "error", err)
	}
	return idx, nil
}

func (c *IndexCache) lookup(name string) (*PointIndex, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.indexes[name]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.lru.MoveToFront(entry.element)
	return entry.index, true
}

// Add stores an index under a layer name, evicting least recently used
// indexes to make room. It fails when the index alone exceeds the limit.
func (c *IndexCache) Add(name string, idx *PointIndex) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.indexes[name]; ok {
		c.usedMemory += estimateIndexMemory(idx) - entry.memorySize
		entry.index = idx
		entry.memorySize = estimateIndexMemory(idx)
		c.lru.MoveToFront(entry.element)
		c.evictOver(entry)
		return nil
	}

	memSize := estimateIndexMemory(idx)
	if c.maxMemory > 0 && memSize > c.maxMemory {
		return fmt.Errorf("index too large for cache (%d bytes > %d bytes max)",
			memSize, c.maxMemory)
	}

	entry := &cacheEntry{
		name:       name,
		index:      idx,
		memorySize: memSize,
	}
	entry.element = c.lru.PushFront(entry)
	c.indexes[name] = entry
	c.usedMemory += memSize
	c.evictOver(entry)
	return nil
}

// evictOver removes least recently used entries other than keep until the
// cache is within its limit. Must be called with c.mu locked.
func (c *IndexCache) evictOver(keep *cacheEntry) {
	if c.maxMemory <= 0 {
		return
	}
	for c.usedMemory > c.maxMemory {
		elem := c.lru.Back()
		if elem == nil || elem.Value.(*cacheEntry) == keep {
			return
		}
		c.remove(elem.Value.(*cacheEntry))
	}
}

func (c *IndexCache) remove(entry *cacheEntry) {
	c.lru.Remove(entry.element)
	delete(c.indexes, entry.name)
	c.usedMemory -= entry.memorySize
}

// Remove drops the index of a layer from the cache.
func (c *IndexCache) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.indexes[LayerName(name)]; ok {
		c.remove(entry)
	}
}

// Clear removes all indexes from the cache.
func (c *IndexCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.indexes = make(map[string]*cacheEntry)
	c.lru.Init()
	c.usedMemory = 0
}

// Stats returns cache statistics.
func (c *IndexCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Indexes:    len(c.indexes),
		UsedMemory: c.usedMemory,
		MaxMemory:  c.maxMemory,
		Hits:       c.hits,
		Misses:     c.misses,
	}
}

// estimateIndexMemory approximates the heap held by an index: a fixed
// overhead plus the R-tree leaf entry, rectangle and wrapped point of each
// indexed point.
func estimateIndexMemory(idx *PointIndex) int64 {
	if idx == nil {
		return 0
	}
	const (
		baseOverhead  = 1024
		bytesPerPoint = 160
	)
	return baseOverhead + int64(idx.Len())*bytesPerPoint
}
