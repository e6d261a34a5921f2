package query

import (
	"sort"
	"sync"
)

type TraceEventKind string

const (
	TraceEventConsideredChunkIDs TraceEventKind = "considered_chunk_ids"
	TraceEventKeywords           TraceEventKind = "keywords"
	TraceEventQueriedNodeIDs     TraceEventKind = "queried_node_ids"
	TraceEventSynthesis          TraceEventKind = "synthesis"
)

// TraceEvent is an extensible event envelope for query tracing.
// Additive changes to this struct are backward compatible for implementers.
type TraceEvent struct {
	Kind TraceEventKind

	ChunkIDs []string
	Keywords []string
	NodeIDs  []string

	DurationMs int64
}

// Tracer is a sink for query tracing events.
//
// Implementers can forward events to logs, telemetry, or custom
// post-processing pipelines.
type Tracer interface {
	Record(event TraceEvent)
}

// MultiTracer fan-outs trace events to multiple tracers.
type MultiTracer []Tracer

func (m MultiTracer) Record(event TraceEvent) {
	for _, t := range m {
		if t == nil {
			continue
		}
		t.Record(event)
	}
}

func recordConsideredChunks(t Tracer, ids ...string) {
	if t == nil || len(ids) == 0 {
		return
	}
	t.Record(TraceEvent{Kind: TraceEventConsideredChunkIDs, ChunkIDs: ids})
}

func recordKeywords(t Tracer, keywords ...string) {
	if t == nil || len(keywords) == 0 {
		return
	}
	t.Record(TraceEvent{Kind: TraceEventKeywords, Keywords: keywords})
}

func recordQueriedNodes(t Tracer, ids ...string) {
	if t == nil || len(ids) == 0 {
		return
	}
	t.Record(TraceEvent{Kind: TraceEventQueriedNodeIDs, NodeIDs: ids})
}

func recordSynthesis(t Tracer, durationMs int64) {
	if t == nil {
		return
	}
	t.Record(TraceEvent{Kind: TraceEventSynthesis, DurationMs: durationMs})
}

// QueryTrace is a Tracer that accumulates events in memory. Safe for
// concurrent use.
type QueryTrace struct {
	mu sync.Mutex

	consideredChunkIDs map[string]struct{}
	keywords           map[string]struct{}
	queriedNodeIDs     map[string]struct{}
	synthesisMs        int64
}

// QueryTraceSnapshot is a sorted, copyable view of an accumulated trace.
type QueryTraceSnapshot struct {
	ConsideredChunkIDs []string
	Keywords           []string
	QueriedNodeIDs     []string
	SynthesisMs        int64
}

func NewQueryTrace() *QueryTrace {
	return &QueryTrace{
		consideredChunkIDs: make(map[string]struct{}),
		keywords:           make(map[string]struct{}),
		queriedNodeIDs:     make(map[string]struct{}),
	}
}

func (t *QueryTrace) Record(event TraceEvent) {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch event.Kind {
	case TraceEventConsideredChunkIDs:
		for _, id := range event.ChunkIDs {
			if id == "" {
				continue
			}
			t.consideredChunkIDs[id] = struct{}{}
		}
	case TraceEventKeywords:
		for _, keyword := range event.Keywords {
			if keyword == "" {
				continue
			}
			t.keywords[keyword] = struct{}{}
		}
	case TraceEventQueriedNodeIDs:
		for _, id := range event.NodeIDs {
			if id == "" {
				continue
			}
			t.queriedNodeIDs[id] = struct{}{}
		}
	case TraceEventSynthesis:
		t.synthesisMs += event.DurationMs
	default:
		return
	}
}

func (t *QueryTrace) Snapshot() QueryTraceSnapshot {
	if t == nil {
		return QueryTraceSnapshot{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s := QueryTraceSnapshot{
		ConsideredChunkIDs: make([]string, 0, len(t.consideredChunkIDs)),
		Keywords:           make([]string, 0, len(t.keywords)),
		QueriedNodeIDs:     make([]string, 0, len(t.queriedNodeIDs)),
		SynthesisMs:        t.synthesisMs,
	}

	for id := range t.consideredChunkIDs {
		s.ConsideredChunkIDs = append(s.ConsideredChunkIDs, id)
	}
	for keyword := range t.keywords {
		s.Keywords = append(s.Keywords, keyword)
	}
	for id := range t.queriedNodeIDs {
		s.QueriedNodeIDs = append(s.QueriedNodeIDs, id)
	}

	sort.Strings(s.ConsideredChunkIDs)
	sort.Strings(s.Keywords)
	sort.Strings(s.QueriedNodeIDs)

	return s
}
