package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

const maxOutputInError = 512

// Downloader fetches subtitle files for a video into the output template
type Downloader interface {
	Name() string
	DownloadSubtitles(ctx context.Context, url, output string) error
}

// Runner executes a command and returns its combined output
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run executes name with args, killing the process when ctx is done
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Module runs yt-dlp as a Python module
type Module struct {
	Python string
	Config Config
	Runner Runner
}

// NewModule creates a Module. An empty python selects python3, or python on Windows.
func NewModule(python string, cfg Config) *Module {
	if python == "" {
		python = DefaultPython()
	}
	return &Module{Python: python, Config: cfg, Runner: ExecRunner{}}
}

// DefaultPython returns the interpreter name for the current platform
func DefaultPython() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

// Name implements Downloader
func (m *Module) Name() string { return "yt-dlp-module" }

// DownloadSubtitles implements Downloader
func (m *Module) DownloadSubtitles(ctx context.Context, url, output string) error {
	args := append([]string{"-m", "yt_dlp"}, m.Config.BuildArgs(url, output)...)
	return run(ctx, m.Runner, m.Config, m.Python, args)
}

// Binary runs the standalone yt-dlp executable
type Binary struct {
	Command string // executable name, looked up in PATH
	Path    string // resolved path, preferred over Command
	Config  Config
	Runner  Runner
}

// NewBinary creates a Binary
func NewBinary(command, path string, cfg Config) *Binary {
	if command == "" {
		command = "yt-dlp"
	}
	return &Binary{Command: command, Path: path, Config: cfg, Runner: ExecRunner{}}
}

// Name implements Downloader
func (b *Binary) Name() string { return "yt-dlp-binary" }

func (b *Binary) exe() string {
	if b.Path != "" {
		return b.Path
	}
	return b.Command
}

// CheckBinary verifies that the executable exists and is not a directory
func (b *Binary) CheckBinary() error {
	if b == nil {
		return errors.New("yt-dlp not initialized")
	}

	exe := b.Path
	if exe == "" {
		found, err := exec.LookPath(b.Command)
		if err != nil {
			return fmt.Errorf("yt-dlp not found in PATH (%s): %w", b.Command, err)
		}
		exe = found
	}

	info, err := os.Stat(exe)
	if err != nil {
		return fmt.Errorf("yt-dlp not found at %s: %w", exe, err)
	}
	if info.IsDir() {
		return fmt.Errorf("yt-dlp path %s is a directory", exe)
	}
	return nil
}

// GetVersion runs yt-dlp --version
func (b *Binary) GetVersion(ctx context.Context) (string, error) {
	out, err := runnerOrDefault(b.Runner).Run(ctx, b.exe(), "--version")
	if err != nil {
		return "", fmt.Errorf("yt-dlp --version failed: %w, output: %s", err, tail(out))
	}
	return strings.TrimSpace(string(out)), nil
}

// DownloadSubtitles implements Downloader
func (b *Binary) DownloadSubtitles(ctx context.Context, url, output string) error {
	return run(ctx, b.Runner, b.Config, b.exe(), b.Config.BuildArgs(url, output))
}

func run(ctx context.Context, runner Runner, cfg Config, name string, args []string) error {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	out, err := runnerOrDefault(runner).Run(ctx, name, args...)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", name, ctx.Err())
		}
		return fmt.Errorf("%s failed: %w, output: %s", name, err, tail(out))
	}
	return nil
}

func runnerOrDefault(r Runner) Runner {
	if r == nil {
		return ExecRunner{}
	}
	return r
}

// tail keeps the end of the process output, where yt-dlp prints its error
func tail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > maxOutputInError {
		s = "..." + s[len(s)-maxOutputInError:]
	}
	return s
}
