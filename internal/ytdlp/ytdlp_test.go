package ytdlp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	name        string
	args        []string
	out         []byte
	err         error
	hadDeadline bool
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.name = name
	f.args = args
	_, f.hadDeadline = ctx.Deadline()
	return f.out, f.err
}

func TestBuildArgs(t *testing.T) {
	cfg := NewConfig(nil, 0)
	args := cfg.BuildArgs("https://www.youtube.com/watch?v=dQw4w9WgXcQ", "/tmp/yt-summary-dQw4w9WgXcQ-1")

	assert.Equal(t, []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"--skip-download",
		"--write-sub",
		"--write-auto-sub",
		"--sub-lang", "en,en-US",
		"--output", "/tmp/yt-summary-dQw4w9WgXcQ-1",
		"--no-check-certificates",
		"--no-warnings",
		"--prefer-free-formats",
	}, args)
}

func TestBuildArgs_Minimal(t *testing.T) {
	cfg := &Config{SkipDownload: true}
	assert.Equal(t, []string{"u", "--skip-download"}, cfg.BuildArgs("u", ""))
}

func TestModule_DownloadSubtitles(t *testing.T) {
	runner := &fakeRunner{}
	m := NewModule("", *NewConfig([]string{"en"}, time.Minute))
	m.Runner = runner

	err := m.DownloadSubtitles(context.Background(), "https://www.youtube.com/watch?v=abc", "/tmp/out")
	require.NoError(t, err)

	if runtime.GOOS == "windows" {
		assert.Equal(t, "python", runner.name)
	} else {
		assert.Equal(t, "python3", runner.name)
	}
	assert.Equal(t, []string{"-m", "yt_dlp", "https://www.youtube.com/watch?v=abc"}, runner.args[:3])
	assert.Contains(t, runner.args, "en")
	assert.True(t, runner.hadDeadline)
	assert.Equal(t, "yt-dlp-module", m.Name())
}

func TestBinary_DownloadSubtitlesError(t *testing.T) {
	runner := &fakeRunner{
		out: []byte("ERROR: [youtube] abc: Sign in to confirm you're not a bot\n"),
		err: errors.New("exit status 1"),
	}
	b := NewBinary("", "", *NewConfig(nil, 0))
	b.Runner = runner

	err := b.DownloadSubtitles(context.Background(), "https://www.youtube.com/watch?v=abc", "/tmp/out")
	require.Error(t, err)
	assert.Equal(t, "yt-dlp", runner.name)
	assert.False(t, runner.hadDeadline)
	assert.Contains(t, err.Error(), "exit status 1")
	assert.Contains(t, err.Error(), "not a bot")
}

func TestBinary_PathPreferred(t *testing.T) {
	runner := &fakeRunner{out: []byte("2025.01.15\n")}
	b := NewBinary("yt-dlp", "/opt/bin/yt-dlp", Config{})
	b.Runner = runner

	version, err := b.GetVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025.01.15", version)
	assert.Equal(t, "/opt/bin/yt-dlp", runner.name)
	assert.Equal(t, []string{"--version"}, runner.args)
}

func TestRun_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &fakeRunner{err: errors.New("signal: killed")}
	b := NewBinary("", "", Config{})
	b.Runner = runner

	err := b.DownloadSubtitles(ctx, "u", "o")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckBinary(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "yt-dlp")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))

	assert.NoError(t, NewBinary("", exe, Config{}).CheckBinary())

	err := NewBinary("", dir, Config{}).CheckBinary()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")

	err = NewBinary("", filepath.Join(dir, "missing"), Config{}).CheckBinary()
	assert.Error(t, err)

	err = NewBinary("definitely-not-a-real-yt-dlp-binary", "", Config{}).CheckBinary()
	assert.Error(t, err)

	var nilBinary *Binary
	assert.Error(t, nilBinary.CheckBinary())
}

func TestTail(t *testing.T) {
	long := strings.Repeat("x", 600) + "END"
	got := tail([]byte(long))
	assert.True(t, strings.HasPrefix(got, "..."))
	assert.True(t, strings.HasSuffix(got, "END"))
	assert.Len(t, got, maxOutputInError+3)

	assert.Equal(t, "short", tail([]byte("  short\n")))
}
