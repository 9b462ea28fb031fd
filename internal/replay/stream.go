package replay

import (
	"fmt"
	"os"
	"sync"

	"xscraper/pkg/capture"
)

// Stream replays a recording one event per scroll step, so a paced scroll
// driver controls replay timing: each step feeds the next recorded event and
// the driver's idle detection ends the scope once the recording is exhausted.
//
// The stream is constructed empty and attached to its engine afterwards,
// because the engine itself is built around the scroll driver that calls
// Step.
type Stream struct {
	mu     sync.Mutex
	engine *capture.Engine
	events []Event
	pos    int
	stats  Stats
}

// NewStream creates an empty stream.
func NewStream() *Stream { return &Stream{} }

// Attach binds the engine that Step feeds events into.
func (s *Stream) Attach(engine *capture.Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine = engine
}

// Load replaces the stream's contents with the given recording and resets
// the replay position and stats. It returns the number of events loaded.
func (s *Stream) Load(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open recording: %w", err)
	}
	defer file.Close()

	events, err := readEvents(file)
	if err != nil {
		return 0, fmt.Errorf("replay of %s failed: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
	s.pos = 0
	s.stats = Stats{}
	return len(events), nil
}

// Step feeds the next recorded event into the engine. It is a scroll.StepFunc:
// it reports true while events remain and false once the recording is
// exhausted, which the scroll driver's idle detection turns into completion.
func (s *Stream) Step() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil || s.pos >= len(s.events) {
		return false, nil
	}

	ev := s.events[s.pos]
	s.pos++

	res := s.engine.Process(ev.Body, ev.URL)
	s.stats.Events++
	if res.Accepted {
		s.stats.Accepted++
	}
	s.stats.Added += res.Added
	s.stats.Total = res.Total
	return true, nil
}

// Stats returns the replay counters for the recording loaded last.
func (s *Stream) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
