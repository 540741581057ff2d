package telemetry

import (
	"io"
	"sync"
	"time"
)

// TimingCollector builds a tree of stage timings.
type TimingCollector struct {
	mu      sync.Mutex
	roots   []*stage
	current *stage
}

type stage struct {
	name     string
	start    time.Time
	end      time.Time
	parent   *stage
	children []*stage
}

func (s *stage) duration() time.Duration {
	if s.end.IsZero() {
		return 0
	}
	return s.end.Sub(s.start)
}

// NewTimingCollector creates an empty collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{}
}

// Start opens a stage under the currently open stage, or as a new root.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &stage{name: name, start: time.Now(), parent: c.current}
	if c.current == nil {
		c.roots = append(c.roots, s)
	} else {
		c.current.children = append(c.current.children, s)
	}
	c.current = s

	return &stageTimer{collector: c, stage: s}
}

// Report writes every root stage as a tree.
func (c *TimingCollector) Report(w io.Writer, styles interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, root := range c.roots {
		formatTree(w, root, styles)
	}
}

type stageTimer struct {
	collector *TimingCollector
	stage     *stage
}

func (t *stageTimer) End() {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	t.stage.end = time.Now()
	if t.collector.current == t.stage {
		t.collector.current = t.stage.parent
	}
}

// Child opens a stage under this one without moving the collector's cursor.
func (t *stageTimer) Child(name string) Timer {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	s := &stage{name: name, start: time.Now(), parent: t.stage}
	t.stage.children = append(t.stage.children, s)

	return &stageTimer{collector: t.collector, stage: s}
}
