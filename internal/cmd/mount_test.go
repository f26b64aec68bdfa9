package cmd

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dendrascience/jsonfs/internal/config"
	"github.com/dendrascience/jsonfs/jsonfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMountCmd_Flags(t *testing.T) {
	cmd := NewMountCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--watch", "--debounce", "250ms", "--attr-timeout", "0s", "--allow-other", "--fsname", "cfg"}))

	flags := cmd.Flags()
	watch, _ := flags.GetBool("watch")
	debounce, _ := flags.GetDuration("debounce")
	attr, _ := flags.GetDuration("attr-timeout")
	name, _ := flags.GetString("fsname")
	assert.True(t, watch)
	assert.Equal(t, 250*time.Millisecond, debounce)
	assert.Equal(t, time.Duration(0), attr)
	assert.Equal(t, "cfg", name)

	level, _ := flags.GetString("log-level")
	assert.Equal(t, "info", level)
}

func TestDescribeHealth(t *testing.T) {
	loaded := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h := jsonfs.Health{
		Valid:      true,
		Generation: 3,
		LoadedAt:   loaded,
		Digest:     "0123456789abcdef0123",
	}
	assert.Equal(t, "serving generation 3 (sha256 0123456789ab, loaded 2024-05-01T12:00:00Z), document valid", describeHealth(h))

	h.Valid = false
	h.Failures = 2
	h.LastError = errors.New("bad input")
	got := describeHealth(h)
	assert.Contains(t, got, "serving generation 3")
	assert.Contains(t, got, "invalid after 2 failed reloads: bad input")
}

func TestMountCmd_RequiresTwoArgs(t *testing.T) {
	cmd := NewMountCmd()
	cmd.SetArgs([]string{"only-one"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	assert.Error(t, cmd.Execute())
}

func TestMountCmd_PreconditionsFailBeforeMounting(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{"a": 1}`), 0o644))

	cmd := NewMountCmd()
	cmd.SetArgs([]string{doc, dir})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	assert.ErrorIs(t, cmd.Execute(), config.ErrMountContainsDocument)
}

func TestMountOptions(t *testing.T) {
	cfg := config.Default()
	cfg.FSName = "doc.json"
	assert.Len(t, mountOptions(&cfg), 3)

	cfg.AllowOther = true
	assert.Len(t, mountOptions(&cfg), 4)
}

func TestFSOptions(t *testing.T) {
	cfg := config.Default()
	opts := fsOptions(&cfg)
	assert.Equal(t, config.DefaultAttrTimeout, opts.AttrValid)
	assert.False(t, opts.DirectIO)

	cfg.Watch = true
	assert.True(t, fsOptions(&cfg).DirectIO)
}
