package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Download is a finished export ready to be handed to the user.
type Download struct {
	// FileName is the suggested file name including extension.
	FileName string `json:"file_name"`
	// ContentType is the MIME type of Data.
	ContentType string `json:"content_type"`
	// Data holds the encoded file.
	Data []byte `json:"-"`
}

// Sink receives downloads: a directory, an HTTP response, or memory.
type Sink interface {
	Save(ctx context.Context, d *Download) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, d *Download) error

// Save calls f(ctx, d).
func (f SinkFunc) Save(ctx context.Context, d *Download) error { return f(ctx, d) }

// DirSink writes downloads into a directory, creating it if needed.
type DirSink struct {
	Dir string
}

// Save writes d to Dir/d.FileName.
func (s DirSink) Save(ctx context.Context, d *Download) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(s.Dir, filepath.Base(d.FileName))
	if err := os.WriteFile(path, d.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// MemorySink keeps downloads in memory. It is safe for concurrent use.
type MemorySink struct {
	mu        sync.Mutex
	downloads []*Download
}

// Save records d.
func (s *MemorySink) Save(_ context.Context, d *Download) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloads = append(s.downloads, d)
	return nil
}

// Downloads returns the recorded downloads in arrival order.
func (s *MemorySink) Downloads() []*Download {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Download(nil), s.downloads...)
}

// Len returns the number of recorded downloads.
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.downloads)
}
