package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	errs "xscraper/pkg/errors"
	"xscraper/pkg/logger"
	"xscraper/pkg/timeline"
)

// JSONL writes flushed record sets to the output directory, one
// self-contained JSON record per line. Each flush produces a file named
// `{scopeTag}_{timestamp}.jsonl`.
type JSONL struct {
	outputDir string
	tsFormat  string
	now       func() time.Time
	log       logger.Logger

	mu      sync.Mutex
	emitted []string
}

// NewJSONL creates a JSONL sink rooted at outputDir, creating the directory
// if needed. tsFormat is the time layout used in output file names.
func NewJSONL(outputDir, tsFormat string) (*JSONL, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &JSONL{
		outputDir: outputDir,
		tsFormat:  tsFormat,
		now:       time.Now,
		log:       logger.GetLogger(),
	}, nil
}

// Emit writes the record set for a scope. The write is atomic: records go to
// a temporary file that is renamed into place only after a successful sync,
// so a failed flush leaves no partial output behind.
func (s *JSONL) Emit(records []timeline.Record, scopeTag string) error {
	name := fmt.Sprintf("%s_%s.jsonl", scopeTag, s.now().Format(s.tsFormat))
	path := filepath.Join(s.outputDir, name)

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeSink, "failed to create output file", err)
	}

	enc := json.NewEncoder(file)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			file.Close()
			os.Remove(tempPath)
			return errs.Wrap(errs.ErrorTypeSink, "failed to encode record", err)
		}
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return errs.Wrap(errs.ErrorTypeSink, "failed to sync output file", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return errs.Wrap(errs.ErrorTypeSink, "failed to close output file", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errs.Wrap(errs.ErrorTypeSink, "failed to rename output file", err)
	}

	s.mu.Lock()
	s.emitted = append(s.emitted, path)
	s.mu.Unlock()

	s.log.InfoWithFields("record set flushed", map[string]interface{}{
		"scope":   scopeTag,
		"records": len(records),
		"path":    path,
	})
	return nil
}

// EmittedFiles returns the paths written so far, in emit order.
func (s *JSONL) EmittedFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.emitted))
	copy(out, s.emitted)
	return out
}
