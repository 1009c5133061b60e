// Package replay caches materialized traces so that a consumer can scrub
// through a search, forward or backward, without re-running the algorithm.
package replay

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/bastiangx/seekbench/internal/logger"
	"github.com/bastiangx/seekbench/pkg/match"
	charmlog "github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// ErrTraceTooLong is returned when a trace has more steps than the cache allows.
var ErrTraceTooLong = errors.New("trace exceeds step limit")

// Key identifies one trace. The hash config only matters for Rabin-Karp.
type Key struct {
	Algorithm match.Algorithm
	Hash      match.HashConfig
	Text      string
	Pattern   string
}

// String encodes the key so that every trace of one algorithm shares the
// prefix "<algorithm>/". The pattern is length-prefixed, which keeps
// (pattern, text) pairs unambiguous.
func (k Key) String() string {
	hash := "-"
	if k.Algorithm == match.RabinKarp {
		hash = k.Hash.String()
	}
	return k.Algorithm.String() + "/" + hash + "/" + strconv.Itoa(len(k.Pattern)) + ":" + k.Pattern + k.Text
}

// Page is a window of a cached trace.
type Page struct {
	Key   string       `json:"key" msgpack:"k"`
	Total int          `json:"total" msgpack:"total"`
	From  int          `json:"from" msgpack:"f"`
	Steps []match.Step `json:"steps" msgpack:"s"`
}

// Cache is an LRU of materialized traces keyed in a patricia trie.
// It is safe for concurrent use.
type Cache struct {
	trie       *patricia.Trie
	accessTime map[string]int64
	clock      int64
	maxEntries int
	maxSteps   int
	hits       int64
	misses     int64
	mu         sync.Mutex
	log        *charmlog.Logger
}

// NewCache keeps at most maxEntries traces of at most maxSteps steps each.
// Non-positive limits mean unbounded.
func NewCache(maxEntries, maxSteps int) *Cache {
	if maxEntries <= 0 {
		maxEntries = math.MaxInt
	}
	if maxSteps <= 0 {
		maxSteps = math.MaxInt
	}
	return &Cache{
		trie:       patricia.NewTrie(),
		accessTime: make(map[string]int64),
		maxEntries: maxEntries,
		maxSteps:   maxSteps,
		log:        logger.New("replay"),
	}
}

// Load returns the full step sequence for key, running the trace on a miss.
// The returned slice is shared and must not be modified.
func (c *Cache) Load(key Key) ([]match.Step, error) {
	k := key.String()
	if steps, ok := c.lookup(k); ok {
		return steps, nil
	}

	tr, err := match.Trace(key.Algorithm, key.Hash, key.Text, key.Pattern)
	if err != nil {
		return nil, err
	}
	steps, complete := tr.CollectN(c.maxSteps)
	if !complete {
		return nil, fmt.Errorf("%s: %w (%d)", key.Algorithm, ErrTraceTooLong, c.maxSteps)
	}

	c.store(k, steps)
	return steps, nil
}

// Page returns up to count steps starting at from. A from past the end yields
// an empty page; a negative from is an input error.
func (c *Cache) Page(key Key, from, count int) (Page, error) {
	if from < 0 {
		return Page{}, &match.InvalidInputError{Field: "from", Reason: "must not be negative"}
	}
	if count <= 0 {
		return Page{}, &match.InvalidInputError{Field: "count", Reason: "must be positive"}
	}
	steps, err := c.Load(key)
	if err != nil {
		return Page{}, err
	}

	end := min(from+count, len(steps))
	page := Page{Key: key.String(), Total: len(steps), From: from, Steps: []match.Step{}}
	if from < end {
		page.Steps = steps[from:end]
	}
	return page, nil
}

func (c *Cache) lookup(k string) ([]match.Step, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := c.trie.Get(patricia.Prefix(k))
	if item == nil {
		c.misses++
		return nil, false
	}
	c.hits++
	c.markAccessed(k)
	return item.([]match.Step), true
}

func (c *Cache) store(k string, steps []match.Step) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.trie.Get(patricia.Prefix(k)) == nil && len(c.accessTime) >= c.maxEntries {
		c.evictLRU()
	}
	c.trie.Set(patricia.Prefix(k), steps)
	c.markAccessed(k)
}

// InvalidateAlgorithm drops every cached trace of alg and reports how many
// were removed. The server calls it for Rabin-Karp when the hash changes.
func (c *Cache) InvalidateAlgorithm(alg match.Algorithm) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := patricia.Prefix(alg.String() + "/")
	var keys []string
	err := c.trie.VisitSubtree(prefix, func(p patricia.Prefix, _ patricia.Item) error {
		keys = append(keys, string(p))
		return nil
	})
	if err != nil {
		c.log.Errorf("Error visiting trace cache subtree: %v", err)
	}
	c.trie.DeleteSubtree(prefix)
	for _, k := range keys {
		delete(c.accessTime, k)
	}
	c.log.Debugf("Invalidated %d cached %s traces", len(keys), alg)
	return len(keys)
}

// Len returns the number of cached traces.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.accessTime)
}

// Stats reports the cache size, capacity and hit/miss counters.
func (c *Cache) Stats() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return map[string]int{
		"cachedTraces": len(c.accessTime),
		"maxTraces":    c.maxEntries,
		"cacheHits":    int(c.hits),
		"cacheMisses":  int(c.misses),
	}
}

func (c *Cache) markAccessed(k string) {
	c.clock++
	c.accessTime[k] = c.clock
}

func (c *Cache) evictLRU() {
	var oldestKey string
	oldestTime := int64(math.MaxInt64)

	for k, t := range c.accessTime {
		if t < oldestTime {
			oldestTime = t
			oldestKey = k
		}
	}
	if oldestKey == "" {
		return
	}
	c.trie.Delete(patricia.Prefix(oldestKey))
	delete(c.accessTime, oldestKey)
	c.log.Debugf("Evicted trace %q from cache", oldestKey)
}
