package tracking

import "sync/atomic"

// sequencer stamps events with a process-wide increasing number so sinks can order them.
type sequencer struct{ n atomic.Uint64 }

func (s *sequencer) next() uint64 { return s.n.Add(1) }
