// Package segments is the scoped temporary store for audio handoffs.
// A segment lives on disk only between arrival and the transcription
// call; the returned cleanup runs on every exit path of the pipeline.
package segments

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

type Store struct {
	dir string
}

// NewStore creates dir if needed. Segments from a previous run are
// stale by definition and swept on startup.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create segment dir: %w", err)
	}
	s := &Store{dir: dir}
	s.sweep()
	return s, nil
}

// Put writes data to a fresh temp file and returns its path plus a
// cleanup that removes it. cleanup is safe to call more than once.
func (s *Store) Put(data []byte, ext string) (string, func(), error) {
	f, err := os.CreateTemp(s.dir, "segment-*"+ext)
	if err != nil {
		return "", nil, fmt.Errorf("create segment file: %w", err)
	}
	path := f.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("module", "segments").Str("path", path).Msg("remove segment file")
		}
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write segment file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close segment file: %w", err)
	}
	return path, cleanup, nil
}

// Dir is the store's root, used by the upload endpoint.
func (s *Store) Dir() string { return s.dir }

func (s *Store) sweep() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		_ = os.Remove(s.dir + "/" + e.Name())
	}
}
