package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/conduit-lang/cppbind/internal/cppdata"
	"github.com/conduit-lang/cppbind/internal/errors"
	utilstrings "github.com/conduit-lang/cppbind/internal/util/strings"
)

// SchemaVersion changes whenever the snapshot layout changes. Snapshots
// written with another version are discarded.
const SchemaVersion = 1

type envelope struct {
	Schema    int           `cbor:"schema"`
	Unit      string        `cbor:"unit"`
	InputHash string        `cbor:"input_hash"`
	Data      *cppdata.Data `cbor:"data"`
}

// Store keeps one snapshot file per generation unit
type Store struct {
	dir    string
	logger *zap.Logger

	mu          sync.Mutex
	diagnostics errors.ErrorList
}

// NewStore creates a store rooted at dir. A nil logger discards output.
func NewStore(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, logger: logger}
}

// Path returns the snapshot file of a unit
func (s *Store) Path(unit string) string {
	return filepath.Join(s.dir, utilstrings.ToIdentifier(unit)+".cbor")
}

// Load returns the snapshot of unit if it was built from inputHash. A
// snapshot that does not decode is removed and reported as a warning; the
// caller rebuilds the model either way.
func (s *Store) Load(unit, inputHash string) (*cppdata.Data, bool) {
	path := s.Path(unit)
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.discard(path, err.Error())
		}
		return nil, false
	}

	var env envelope
	if err := Unmarshal(raw, &env); err != nil {
		s.discard(path, err.Error())
		return nil, false
	}
	if env.Schema != SchemaVersion {
		s.discard(path, fmt.Sprintf("schema version %d, want %d", env.Schema, SchemaVersion))
		return nil, false
	}
	if env.Unit != unit || env.Data == nil {
		s.discard(path, "snapshot belongs to another unit")
		return nil, false
	}
	if env.InputHash != inputHash {
		s.logger.Debug("snapshot out of date", zap.String("unit", unit))
		return nil, false
	}
	if env.Data.TemplateInstantiations == nil {
		env.Data.TemplateInstantiations = make(map[string][][]cppdata.Type)
	}

	s.logger.Debug("using cached model", zap.String("unit", unit), zap.String("path", path))
	return env.Data, true
}

// Save writes the snapshot of unit atomically
func (s *Store) Save(unit, inputHash string, data *cppdata.Data) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	raw, err := Marshal(envelope{
		Schema:    SchemaVersion,
		Unit:      unit,
		InputHash: inputHash,
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	path := s.Path(unit)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Invalidate removes the snapshot of unit
func (s *Store) Invalidate(unit string) error {
	if err := os.Remove(s.Path(unit)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Diagnostics returns the warnings recorded for discarded snapshots
func (s *Store) Diagnostics() errors.ErrorList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(errors.ErrorList(nil), s.diagnostics...)
}

func (s *Store) discard(path, reason string) {
	diag := errors.NewStaleSnapshot(path, reason)
	s.logger.Warn(diag.Message, zap.String("code", string(diag.Code)))

	s.mu.Lock()
	s.diagnostics = append(s.diagnostics, diag)
	s.mu.Unlock()

	os.Remove(path)
}
