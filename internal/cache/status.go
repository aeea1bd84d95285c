package cache

import (
	"time"

	"wikiexplorer/internal/core"
)

// Stats counts cache activity since construction.
type Stats struct {
	Hits           int `json:"hits"`
	Misses         int `json:"misses"`
	Refilled       int `json:"refilled"`
	RefillFailures int `json:"refill_failures"`
}

// EntryInfo describes one buffered article.
type EntryInfo struct {
	Kind      core.RequestKind `json:"kind"`
	RelatedTo string           `json:"related_to,omitempty"`
	Title     string           `json:"title"`
	AddedAt   time.Time        `json:"added_at"`
}

// Status is a point-in-time view of the cache.
type Status struct {
	Size      int         `json:"size"`
	Capacity  int         `json:"capacity"`
	Refilling bool        `json:"refilling"`
	Entries   []EntryInfo `json:"entries"`
	Stats     Stats       `json:"stats"`
}

// Status returns a snapshot of the buffer.
func (c *Cache) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]EntryInfo, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, EntryInfo{
			Kind:      e.request.Kind,
			RelatedTo: e.request.Title,
			Title:     e.article.Title,
			AddedAt:   e.addedAt,
		})
	}

	return Status{
		Size:      len(c.entries),
		Capacity:  c.capacity,
		Refilling: c.refilling,
		Entries:   entries,
		Stats:     c.stats,
	}
}
