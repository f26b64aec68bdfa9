package jsonfs

import (
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dendrascience/jsonfs/tree"
	"github.com/dendrascience/jsonfs/util"
)

// Logger is the subset of the application logger the store uses.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}

// Document is one parsed backing file. It is never modified after load.
type Document struct {
	Root tree.Node
	Path string
	// Digest is the SHA-256 of the bytes the tree was parsed from.
	Digest string
}

// Generation is a published document together with the metadata cached
// for it. Operations load the current generation once and use it
// throughout, so they never mix an old tree with new metadata.
type Generation struct {
	Seq      uint64
	Document *Document
	Metadata BackingMetadata
	LoadedAt time.Time
}

// Health reports the outcome of the most recent load attempt.
type Health struct {
	Valid      bool
	Generation uint64
	LoadedAt   time.Time
	Digest     string
	LastError  error
	Failures   int
}

// Store holds the current generation of the backing document.
type Store struct {
	path     string
	readFile func(string) ([]byte, error)
	stat     func(string) (BackingMetadata, error)
	log      Logger

	current atomic.Pointer[Generation]

	// valid gates metadata refresh. It is false after a failed load and
	// true again after the next successful one.
	valid atomic.Bool

	reloadMu sync.Mutex // serializes loads; readers never take it
	seq      uint64
	lastErr  error
	failures int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for reload reporting.
func WithLogger(l Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Open loads the document at path. The first load must succeed; there is
// no previous generation to fall back to.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:     path,
		readFile: os.ReadFile,
		stat:     statBacking,
		log:      nopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}

	gen, err := s.load()
	if err != nil {
		return nil, err
	}
	s.seq = 1
	gen.Seq = s.seq
	s.current.Store(gen)
	s.valid.Store(true)
	return s, nil
}

// Path returns the backing document path.
func (s *Store) Path() string { return s.path }

// Snapshot returns the current generation.
func (s *Store) Snapshot() *Generation { return s.current.Load() }

// Valid reports whether the last load attempt succeeded.
func (s *Store) Valid() bool { return s.valid.Load() }

// Health returns the reload state of the store.
func (s *Store) Health() Health {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	gen := s.current.Load()
	return Health{
		Valid:      s.valid.Load(),
		Generation: gen.Seq,
		LoadedAt:   gen.LoadedAt,
		Digest:     gen.Document.Digest,
		LastError:  s.lastErr,
		Failures:   s.failures,
	}
}

// Reload re-reads the backing document and publishes it as a new
// generation. On failure the current generation stays published and
// metadata refresh is suspended until a reload succeeds. Reload is safe
// to call from any goroutine, concurrently with every other method.
func (s *Store) Reload() error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	gen, err := s.load()
	if err != nil {
		wasValid := s.valid.Swap(false)
		s.lastErr = err
		s.failures++
		s.log.Warn("reload failed, serving generation %d: %v", s.current.Load().Seq, err)
		if wasValid {
			s.log.Warn("document %s degraded: metadata refresh suspended until next successful reload", s.path)
		}
		return err
	}

	s.seq++
	gen.Seq = s.seq
	wasValid := s.valid.Load()
	prev := s.current.Swap(gen)
	s.valid.Store(true)
	s.lastErr = nil
	s.failures = 0

	if !wasValid {
		s.log.Info("document %s recovered", s.path)
	}
	if prev.Document.Digest == gen.Document.Digest {
		s.log.Debug("%s content unchanged (sha256 %s)", s.path, util.ShortHash(gen.Document.Digest))
	}
	s.log.Info("reloaded %s as generation %d (sha256 %s)", s.path, gen.Seq, util.ShortHash(gen.Document.Digest))
	return nil
}

func (s *Store) load() (*Generation, error) {
	data, err := s.readFile(s.path)
	if err != nil {
		return nil, newLoadError(s.path, StageRead, err)
	}

	root, err := tree.ParseDocument(data)
	if err != nil {
		stage := StageParse
		if errors.Is(err, tree.ErrScalarRoot) {
			stage = StageRoot
		}
		return nil, newLoadError(s.path, stage, err)
	}

	meta, err := s.stat(s.path)
	if err != nil {
		return nil, newLoadError(s.path, StageStat, err)
	}

	return &Generation{
		Document: &Document{Root: root, Path: s.path, Digest: util.HashBytes(data)},
		Metadata: meta,
		LoadedAt: time.Now(),
	}, nil
}

// metadata returns fresh backing metadata for gen. A failed stat, or a
// store whose last load failed, serves the cached values.
func (s *Store) metadata(gen *Generation) BackingMetadata {
	if !s.valid.Load() {
		return gen.Metadata
	}
	meta, err := s.stat(s.path)
	if err != nil {
		s.log.Debug("stat %s: %v, serving cached metadata", s.path, err)
		return gen.Metadata
	}
	// A reload may have failed while stat ran.
	if !s.valid.Load() {
		return gen.Metadata
	}

	// Losing the swap means a reload published a newer generation, which
	// carries its own metadata.
	s.current.CompareAndSwap(gen, &Generation{
		Seq:      gen.Seq,
		Document: gen.Document,
		Metadata: meta,
		LoadedAt: gen.LoadedAt,
	})
	return meta
}
