package python

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	"github.com/GriffinCanCode/PyLearn/backend/internal/execution"
)

// Config tunes a Runtime
type Config struct {
	PollInterval time.Duration
	// CompilationCacheDir persists compiled machine code across restarts
	CompilationCacheDir string
	// MemoryLimitPages caps guest memory in 64KiB pages; zero keeps the
	// wazero default
	MemoryLimitPages uint32
}

// DefaultConfig returns the scratchpad configuration
func DefaultConfig() Config {
	return Config{
		PollInterval:     10 * time.Millisecond,
		MemoryLimitPages: 4096,
	}
}

// Runtime is one interpreter session
type Runtime struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	dist     Distribution
	home     string
	cancel   *execution.CancelBuffer
	config   Config
	mu       sync.Mutex
}

// New compiles dist's module. cancel may be nil.
func New(ctx context.Context, dist Distribution, config Config, cancel *execution.CancelBuffer) (*Runtime, error) {
	wasm, err := os.ReadFile(dist.Wasm)
	if err != nil {
		return nil, fmt.Errorf("failed to read interpreter module: %w", err)
	}

	rtConfig := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if config.MemoryLimitPages > 0 {
		rtConfig = rtConfig.WithMemoryLimitPages(config.MemoryLimitPages)
	}
	if config.CompilationCacheDir != "" {
		cache, err := wazero.NewCompilationCacheWithDir(config.CompilationCacheDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open compilation cache: %w", err)
		}
		rtConfig = rtConfig.WithCompilationCache(cache)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, rtConfig)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
	}

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to compile interpreter: %w", err)
	}

	return &Runtime{
		runtime:  rt,
		compiled: compiled,
		dist:     dist,
		home:     pythonHome(dist.Root),
		cancel:   cancel,
		config:   config,
	}, nil
}

// Run executes source as `python -c source` in a fresh instance
func (r *Runtime) Run(ctx context.Context, source string) (execution.Output, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.runtime == nil {
		return execution.Output{}, errors.New("runtime closed")
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	stopWatch := r.cancel.Watch(runCtx, r.config.PollInterval, cancelRun)
	defer stopWatch()

	var stdout, stderr bytes.Buffer
	mod, err := r.runtime.InstantiateModule(runCtx, r.compiled, r.moduleConfig(source, &stdout, &stderr))
	if mod != nil {
		_ = mod.Close(context.Background())
	}

	stopWatch()
	if err := classifyExit(err, stderr.String(), r.cancel.Signaled(), ctx.Err()); err != nil {
		return execution.Output{}, err
	}
	return execution.Output{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

func (r *Runtime) moduleConfig(source string, stdout, stderr *bytes.Buffer) wazero.ModuleConfig {
	cfg := wazero.NewModuleConfig().
		WithName("").
		WithArgs("python", "-c", source).
		WithStdout(stdout).
		WithStderr(stderr).
		WithEnv("PYTHONDONTWRITEBYTECODE", "1").
		WithEnv("PYTHONUNBUFFERED", "1").
		WithSysWalltime().
		WithSysNanotime().
		WithRandSource(rand.Reader)

	if r.dist.Root != "" {
		cfg = cfg.WithFSConfig(wazero.NewFSConfig().WithReadOnlyDirMount(r.dist.Root, "/"))
	}
	if r.home != "" {
		cfg = cfg.WithEnv("PYTHONHOME", r.home)
	}
	return cfg
}

// classifyExit maps a module exit onto the bridge's error conditions.
// signaled reports whether the cancel buffer was set; parentErr is the
// caller context's error, if any.
func classifyExit(err error, stderr string, signaled bool, parentErr error) error {
	if err == nil {
		return nil
	}

	var exit *sys.ExitError
	if !errors.As(err, &exit) {
		return fmt.Errorf("interpreter fault: %w", err)
	}

	switch code := exit.ExitCode(); {
	case code == 0:
		return nil
	case code == sys.ExitCodeContextCanceled || code == sys.ExitCodeDeadlineExceeded:
		if parentErr != nil {
			return parentErr
		}
		if signaled {
			return fmt.Errorf("%w: KeyboardInterrupt", execution.ErrInterrupted)
		}
		return fmt.Errorf("interpreter stopped: %w", err)
	default:
		if msg := strings.TrimSpace(stderr); msg != "" {
			return errors.New(msg)
		}
		return fmt.Errorf("python exited with status %d", code)
	}
}

// pythonHome picks PYTHONHOME for an unpacked tree
func pythonHome(root string) string {
	if root == "" {
		return ""
	}
	fsys := os.DirFS(root)
	for _, prefix := range []string{"usr/local", "usr", ""} {
		matches, err := doublestar.Glob(fsys, path.Join(prefix, "lib", "python3*"))
		if err == nil && len(matches) > 0 {
			return "/" + prefix
		}
	}
	return ""
}

// Close releases the wazero runtime
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.runtime == nil {
		return nil
	}
	err := r.runtime.Close(context.Background())
	r.runtime = nil
	return err
}
