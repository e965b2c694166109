// Package store keeps the board in a local BadgerDB: one key holds the whole
// node snapshot as JSON, another holds the theme preference.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"aether/internal/canvas"
)

const (
	NodesKey = "infinite-canvas-tasks"
	ThemeKey = "infinite-theme"
)

type Config struct {
	// Dir is the database directory. Ignored when InMemory is set.
	Dir      string
	InMemory bool
	Logger   *zap.Logger
}

// Slots is a small key-value store for the board snapshot.
type Slots struct {
	db       *badger.DB
	validate *validator.Validate
	logger   *zap.Logger
}

var _ canvas.Persister = (*Slots)(nil)

// badgerLogger routes badger's internal logging through zap.
type badgerLogger struct {
	sugar *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }

func Open(cfg Config) (*Slots, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Dir == "" {
			return nil, errors.New("store: data directory is required")
		}
		if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("store: create %s: %w", cfg.Dir, err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts = opts.WithNumVersionsToKeep(1).
		WithLogger(badgerLogger{sugar: logger.Named("badger").Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	return &Slots{db: db, validate: validator.New(), logger: logger}, nil
}

func (s *Slots) Close() error {
	return s.db.Close()
}

func (s *Slots) get(key string) ([]byte, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	return val, err
}

func (s *Slots) set(key string, val []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	})
}

// LoadNodes returns the saved snapshot. It reports false when nothing is
// stored or the stored data is not a valid list of nodes; those cases are
// indistinguishable to the caller.
func (s *Slots) LoadNodes() ([]canvas.Node, bool) {
	raw, err := s.get(NodesKey)
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			s.logger.Warn("reading saved board failed", zap.Error(err))
		}
		return nil, false
	}

	var nodes []canvas.Node
	if err := json.Unmarshal(raw, &nodes); err != nil {
		s.logger.Debug("saved board is not valid JSON", zap.Error(err))
		return nil, false
	}
	if nodes == nil {
		return nil, false
	}
	seen := make(map[string]struct{}, len(nodes))
	for i := range nodes {
		if err := s.validate.Struct(nodes[i]); err != nil {
			s.logger.Debug("saved board has an invalid node", zap.Int("index", i), zap.Error(err))
			return nil, false
		}
		if _, dup := seen[nodes[i].ID]; dup {
			s.logger.Debug("saved board has a duplicate id", zap.String("id", nodes[i].ID))
			return nil, false
		}
		seen[nodes[i].ID] = struct{}{}
	}
	return nodes, true
}

// SaveNodes replaces the stored snapshot.
func (s *Slots) SaveNodes(nodes []canvas.Node) error {
	if nodes == nil {
		nodes = []canvas.Node{}
	}
	raw, err := json.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("store: encode nodes: %w", err)
	}
	if err := s.set(NodesKey, raw); err != nil {
		return fmt.Errorf("store: save nodes: %w", err)
	}
	return nil
}

// StoredTheme returns the saved theme and whether one was ever saved. It
// falls back to light.
func (s *Slots) StoredTheme() (canvas.Theme, bool) {
	raw, err := s.get(ThemeKey)
	if err != nil {
		return canvas.ThemeLight, false
	}
	return canvas.ParseTheme(string(raw)), true
}

func (s *Slots) SaveTheme(theme canvas.Theme) error {
	if err := s.set(ThemeKey, []byte(theme)); err != nil {
		return fmt.Errorf("store: save theme: %w", err)
	}
	return nil
}
