package jsonfs

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	platformerrors "github.com/jmgilman/go/errors"

	"github.com/dendrascience/jsonfs/tree"
	"github.com/dendrascience/jsonfs/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleDoc = `{"a": [1, "two", {"b": true}]}`

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func openDoc(t *testing.T, content string) *Store {
	t.Helper()
	s, err := Open(writeDoc(t, content))
	require.NoError(t, err)
	return s
}

func readAll(t *testing.T, s *Store, path string) string {
	t.Helper()
	data, err := s.Read(path, 0, 1<<20)
	require.NoError(t, err)
	return string(data)
}

func TestOpen(t *testing.T) {
	s := openDoc(t, exampleDoc)

	assert.True(t, s.Valid())
	gen := s.Snapshot()
	require.NotNil(t, gen)
	assert.Equal(t, uint64(1), gen.Seq)
	assert.Equal(t, s.Path(), gen.Document.Path)
	assert.True(t, tree.IsContainer(gen.Document.Root))
	assert.False(t, gen.Metadata.Mtime.IsZero())

	h := s.Health()
	assert.True(t, h.Valid)
	assert.NoError(t, h.LastError)
}

func TestOpen_Failures(t *testing.T) {
	tests := []struct {
		name  string
		path  func(t *testing.T) string
		stage LoadStage
		code  platformerrors.ErrorCode
	}{
		{
			name:  "missing file",
			path:  func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.json") },
			stage: StageRead,
			code:  platformerrors.CodeNotFound,
		},
		{
			name:  "invalid json",
			path:  func(t *testing.T) string { return writeDoc(t, `{"a": `) },
			stage: StageParse,
			code:  platformerrors.CodeInvalidInput,
		},
		{
			name:  "leading zero",
			path:  func(t *testing.T) string { return writeDoc(t, `{"a": 01}`) },
			stage: StageParse,
			code:  platformerrors.CodeInvalidInput,
		},
		{
			name:  "scalar root",
			path:  func(t *testing.T) string { return writeDoc(t, `"just a string"`) },
			stage: StageRoot,
			code:  platformerrors.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path(t)
			s, err := Open(path)
			require.Error(t, err)
			assert.Nil(t, s)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr), "got %T", err)
			assert.Equal(t, tt.stage, loadErr.Stage)
			assert.Equal(t, tt.code, loadErr.Code())
			assert.Equal(t, tt.code, platformerrors.GetCode(err))

			var perr platformerrors.PlatformError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, map[string]interface{}{"path": path, "stage": string(tt.stage)}, perr.Context())
		})
	}
}

func TestLoadError_KeepsCause(t *testing.T) {
	le := newLoadError("/doc.json", StageStat, os.ErrPermission)

	assert.ErrorIs(t, le, os.ErrPermission)
	assert.Equal(t, os.ErrPermission, le.Cause())
	assert.Equal(t, platformerrors.CodeUnavailable, le.Code())
	assert.Contains(t, le.Error(), "/doc.json")
	assert.Contains(t, le.Error(), string(StageStat))
}

func TestLoadStage_Code(t *testing.T) {
	assert.Equal(t, platformerrors.CodeNotFound, StageRead.Code())
	assert.Equal(t, platformerrors.CodeInvalidInput, StageParse.Code())
	assert.Equal(t, platformerrors.CodeInvalidInput, StageRoot.Code())
	assert.Equal(t, platformerrors.CodeUnavailable, StageStat.Code())
	assert.Equal(t, platformerrors.CodeUnknown, LoadStage("other").Code())
}

func TestReload_PublishesNewGeneration(t *testing.T) {
	path := writeDoc(t, exampleDoc)
	s, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, `"two"`, readAll(t, s, "/a/1"))
	assert.Equal(t, util.HashBytes([]byte(exampleDoc)), s.Health().Digest)

	require.NoError(t, os.WriteFile(path, []byte(`{"a": [1, "three"]}`), 0o644))
	require.NoError(t, s.Reload())

	assert.Equal(t, uint64(2), s.Snapshot().Seq)
	assert.Equal(t, util.HashBytes([]byte(`{"a": [1, "three"]}`)), s.Snapshot().Document.Digest)
	assert.Equal(t, `"three"`, readAll(t, s, "/a/1"))
	_, err = s.Resolve("/a/2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReload_FailureKeepsPreviousGeneration(t *testing.T) {
	path := writeDoc(t, exampleDoc)
	s, err := Open(path)
	require.NoError(t, err)
	before := s.Snapshot()

	require.NoError(t, os.WriteFile(path, []byte(`{"a": [1, "tw`), 0o644))
	err = s.Reload()

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, StageParse, loadErr.Stage)

	assert.False(t, s.Valid())
	assert.Same(t, before, s.Snapshot())
	assert.Equal(t, `"two"`, readAll(t, s, "/a/1"))

	h := s.Health()
	assert.False(t, h.Valid)
	assert.Equal(t, uint64(1), h.Generation)
	assert.Equal(t, 1, h.Failures)
	assert.ErrorIs(t, h.LastError, tree.ErrSyntax)

	require.NoError(t, os.WriteFile(path, []byte(`{"a": [1, "fixed"]}`), 0o644))
	require.NoError(t, s.Reload())

	assert.True(t, s.Valid())
	assert.Equal(t, `"fixed"`, readAll(t, s, "/a/1"))
	h = s.Health()
	assert.Zero(t, h.Failures)
	assert.NoError(t, h.LastError)
}

func TestReload_RejectsMalformedNumber(t *testing.T) {
	s := openDoc(t, exampleDoc)
	before := s.Snapshot()

	s.readFile = func(string) ([]byte, error) { return []byte(`{"a": 1.}`), nil }
	err := s.Reload()

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, StageParse, loadErr.Stage)
	assert.ErrorIs(t, err, tree.ErrSyntax)
	assert.Same(t, before, s.Snapshot())
	assert.False(t, s.Valid())
}

func TestReload_NeverPublishesScalarRoot(t *testing.T) {
	s := openDoc(t, exampleDoc)

	for _, doc := range []string{`42`, `"text"`, `null`, `true`} {
		s.readFile = func(string) ([]byte, error) { return []byte(doc), nil }
		err := s.Reload()

		var loadErr *LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, StageRoot, loadErr.Stage)
		assert.True(t, tree.IsContainer(s.Snapshot().Document.Root))
	}
}

func TestReload_StatFailureKeepsPreviousGeneration(t *testing.T) {
	s := openDoc(t, exampleDoc)
	before := s.Snapshot()

	s.readFile = func(string) ([]byte, error) { return []byte(`{"new": 1}`), nil }
	s.stat = func(string) (BackingMetadata, error) { return BackingMetadata{}, os.ErrNotExist }

	err := s.Reload()
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, StageStat, loadErr.Stage)
	assert.Same(t, before, s.Snapshot())
	assert.False(t, s.Valid())
}

func TestMetadata_RefreshedWhileValid(t *testing.T) {
	s := openDoc(t, exampleDoc)

	fresh := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	s.stat = func(string) (BackingMetadata, error) {
		return BackingMetadata{Mtime: fresh, Uid: 42}, nil
	}

	attrs, err := s.Attributes("/a")
	require.NoError(t, err)
	assert.Equal(t, fresh, attrs.Mtime)
	assert.Equal(t, uint32(42), attrs.Uid)
	assert.Equal(t, fresh, s.Snapshot().Metadata.Mtime)
}

func TestMetadata_StatFailureServesCache(t *testing.T) {
	s := openDoc(t, exampleDoc)
	cached := s.Snapshot().Metadata

	s.stat = func(string) (BackingMetadata, error) { return BackingMetadata{}, os.ErrNotExist }

	attrs, err := s.Attributes("/")
	require.NoError(t, err)
	assert.Equal(t, cached.Mtime, attrs.Mtime)
	assert.Equal(t, cached.Uid, attrs.Uid)
	assert.True(t, s.Valid(), "a failed refresh is not a failed load")
}

func TestMetadata_RefreshSuspendedWhileInvalid(t *testing.T) {
	s := openDoc(t, exampleDoc)
	cached := s.Snapshot().Metadata

	s.readFile = func(string) ([]byte, error) { return []byte(`{`), nil }
	require.Error(t, s.Reload())

	var calls atomic.Int32
	s.stat = func(string) (BackingMetadata, error) {
		calls.Add(1)
		return BackingMetadata{Mtime: time.Now().Add(time.Hour)}, nil
	}

	for range 5 {
		attrs, err := s.Attributes("/a/0")
		require.NoError(t, err)
		assert.Equal(t, cached.Mtime, attrs.Mtime)
		_, err = s.VolumeAttributes("/")
		require.NoError(t, err)
	}
	assert.Zero(t, calls.Load())

	s.readFile = os.ReadFile
	require.NoError(t, s.Reload())
	_, err := s.Attributes("/a/0")
	require.NoError(t, err)
	assert.NotZero(t, calls.Load())
}

func TestMetadata_ReloadFailureDuringStat(t *testing.T) {
	s := openDoc(t, exampleDoc)
	before := s.Snapshot()

	// A reload fails while the stat call is in flight.
	s.stat = func(string) (BackingMetadata, error) {
		s.valid.Store(false)
		return BackingMetadata{Mtime: time.Now().Add(time.Hour)}, nil
	}

	attrs, err := s.Attributes("/a/0")
	require.NoError(t, err)
	assert.Equal(t, before.Metadata.Mtime, attrs.Mtime)
	assert.Same(t, before, s.Snapshot())
}

// TestReload_ConcurrentReadersSeeWholeGenerations alternates good and bad
// reloads while readers check that every read matches one complete document.
func TestReload_ConcurrentReadersSeeWholeGenerations(t *testing.T) {
	s := openDoc(t, `{"k": "old", "meta": {"v": "old"}}`)

	docs := [][]byte{
		[]byte(`{"k": "new", "meta": {"v": "new"}}`),
		[]byte(`{"k": "br`),
		[]byte(`{"k": "old", "meta": {"v": "old"}}`),
		[]byte(`7`),
	}
	var next atomic.Int32
	s.readFile = func(string) ([]byte, error) {
		return docs[int(next.Add(1)-1)%len(docs)], nil
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				gen := s.Snapshot()
				k, err := gen.Read("/k", 0, 64)
				if !assert.NoError(t, err) {
					return
				}
				v, err := gen.Read("/meta/v", 0, 64)
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, string(k), string(v), "torn generation")
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 200 {
			_ = s.Reload()
		}
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("reloads did not finish")
	}
	close(stop)
	wg.Wait()

	assert.True(t, tree.IsContainer(s.Snapshot().Document.Root))
}

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
	infos []string
}

func (l *recordingLogger) Debug(string, ...any) {}

func (l *recordingLogger) Info(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *recordingLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func TestReload_LogsTransitions(t *testing.T) {
	logger := &recordingLogger{}
	s, err := Open(writeDoc(t, exampleDoc), WithLogger(logger))
	require.NoError(t, err)

	s.readFile = func(string) ([]byte, error) { return []byte(`[`), nil }
	require.Error(t, s.Reload())
	require.Error(t, s.Reload())

	// the degraded notice is only logged on the first failure
	assert.Len(t, logger.warns, 3)

	s.readFile = func(string) ([]byte, error) { return []byte(`[]`), nil }
	require.NoError(t, s.Reload())
	assert.Len(t, logger.infos, 2)
}
