// Package replay feeds recorded response streams through a capture engine.
// A recording is a JSONL file of events, one {"url": ..., "body": ...} object
// per line, captured from live timeline traffic.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"xscraper/pkg/capture"
	"xscraper/pkg/logger"
)

// Event is one recorded response: the request URL it answered and the raw
// response body.
type Event struct {
	URL  string `json:"url"`
	Body string `json:"body"`
}

// Stats summarizes a replayed recording.
type Stats struct {
	Events   int
	Accepted int
	Added    int
	Total    int
}

// Feeder replays recorded events into an engine.
type Feeder struct {
	engine *capture.Engine
	log    logger.Logger
}

// NewFeeder creates a feeder for the given engine.
func NewFeeder(engine *capture.Engine) *Feeder {
	return &Feeder{
		engine: engine,
		log:    logger.GetLogger(),
	}
}

// FeedFile replays one recording file for the scope the engine is currently
// in. The caller is responsible for sequencing the engine: PageReady before
// the first event, Stop after the last.
func (f *Feeder) FeedFile(path string) (Stats, error) {
	file, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to open recording: %w", err)
	}
	defer file.Close()

	stats, err := f.Feed(file)
	if err != nil {
		return stats, fmt.Errorf("replay of %s failed: %w", path, err)
	}
	return stats, nil
}

// Feed replays events from r until EOF.
func (f *Feeder) Feed(r io.Reader) (Stats, error) {
	events, err := readEvents(r)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, ev := range events {
		res := f.engine.Process(ev.Body, ev.URL)
		stats.Events++
		if res.Accepted {
			stats.Accepted++
		}
		stats.Added += res.Added
		stats.Total = res.Total
	}

	f.log.DebugWithFields("recording replayed", map[string]interface{}{
		"events":   stats.Events,
		"accepted": stats.Accepted,
		"added":    stats.Added,
	})
	return stats, nil
}

// readEvents parses a recording. Blank lines are skipped; a malformed line
// aborts the read since it means the recording itself is damaged.
func readEvents(r io.Reader) ([]Event, error) {
	scanner := bufio.NewScanner(r)
	// Timeline payloads routinely exceed the default scanner buffer.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var events []Event
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("malformed event on line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}
	return events, nil
}
