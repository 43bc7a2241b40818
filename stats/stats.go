// Package stats aggregates per-item pipeline events into a run summary.
package stats

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dhcgn/pst-exporter/model"
)

type Stage string

const (
	StageTraverse Stage = "traverse"
	StageExport   Stage = "export"
)

type EventType string

const (
	EventTypeDiscovered EventType = "discovered"
	EventTypeExported   EventType = "exported"
	EventTypeDryRun     EventType = "dry_run_planned"
	EventTypeAttachment EventType = "attachment_saved"
	EventTypeFiltered   EventType = "filtered"
	EventTypeError      EventType = "error"
)

type Event struct {
	Stage      Stage
	Type       EventType
	FolderPath string
	Subject    string
	Err        error
}

type Summary struct {
	Discovered    int
	Exported      int
	DryRunPlanned int
	Attachments   int
	Filtered      int
	Errors        int
	LastError     error
}

// Processed is the count of items that were fully exported.
func (s Summary) Processed() int {
	return s.Exported
}

func (s Summary) LogAttrs() []any {
	attrs := []any{
		"discovered", s.Discovered,
		"exported", s.Exported,
		"dryRunPlanned", s.DryRunPlanned,
		"attachments", s.Attachments,
		"filtered", s.Filtered,
		"errors", s.Errors,
	}
	if s.LastError != nil {
		attrs = append(attrs, "lastError", s.LastError.Error())
	}
	return attrs
}

// Collector applies events synchronously; the pipeline is single-threaded,
// the mutex only guards against incidental cross-goroutine reads.
type Collector struct {
	mu      sync.Mutex
	summary Summary
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Apply(evt Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch evt.Type {
	case EventTypeDiscovered:
		c.summary.Discovered++
	case EventTypeExported:
		c.summary.Exported++
	case EventTypeDryRun:
		c.summary.DryRunPlanned++
	case EventTypeAttachment:
		c.summary.Attachments++
	case EventTypeFiltered:
		c.summary.Filtered++
	case EventTypeError:
		c.summary.Errors++
		if evt.Err != nil {
			c.summary.LastError = evt.Err
		}
	}
}

func (c *Collector) Snapshot() Summary {
	c.mu.Lock()
	summary := c.summary
	c.mu.Unlock()
	return summary
}

// CountByFolder tallies how many extracted items live under each folder
// path.
func CountByFolder(items []model.Item) map[string]int {
	counts := make(map[string]int, len(items))
	for _, item := range items {
		path := item.FolderPath
		if path == "" {
			path = "(root)"
		}
		counts[path]++
	}
	return counts
}

// PrettyPrintTop prints the top N most frequent items in a map.
func PrettyPrintTop(m map[string]int, limit int) {
	type pair struct {
		Key   string
		Value int
	}

	var pairs []pair
	for k, v := range m {
		pairs = append(pairs, pair{k, v})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Value != pairs[j].Value {
			return pairs[i].Value > pairs[j].Value
		}
		return pairs[i].Key < pairs[j].Key
	})

	for i := 0; i < limit && i < len(pairs); i++ {
		fmt.Printf("%d. %s (%d)\n", i+1, pairs[i].Key, pairs[i].Value)
	}
}
