package python

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PyLearn/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/PyLearn/backend/internal/shared/paths"
	"github.com/GriffinCanCode/PyLearn/backend/internal/shared/utils"
)

const (
	// DefaultVersion is the pinned CPython build
	DefaultVersion = "3.12.0"
	// DefaultURL is the WASI CPython release for DefaultVersion
	DefaultURL = "https://github.com/vmware-labs/webassembly-language-runtimes/releases/download/python%2F3.12.0%2B20231211-040d5a6/python-3.12.0-wasi-sdk-20.0.tar.gz"

	wasmPattern    = "**/python*.wasm"
	maxArtifactLen = 256 << 20
	maxEntryLen    = 128 << 20
)

var (
	ErrChecksumMismatch = errors.New("distribution checksum mismatch")
	ErrUnsupportedDist  = errors.New("unsupported distribution artifact")
)

// Distribution locates an unpacked interpreter
type Distribution struct {
	Version string
	// Wasm is the interpreter module
	Wasm string
	// Root is mounted read-only as the guest's filesystem root. Empty
	// for single-file builds with an embedded stdlib.
	Root string
}

// FetchConfig pins where the interpreter comes from
type FetchConfig struct {
	URL      string
	Version  string
	SHA256   string // optional hex digest of the artifact
	CacheDir string
	Timeout  time.Duration
	// Retries is how many times a failed or 5xx download is retried
	Retries int
	// RetryWait is the first backoff; later waits grow up to 10x
	RetryWait time.Duration
}

// DefaultFetchConfig pins DefaultVersion under the user cache directory
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		URL:       DefaultURL,
		Version:   DefaultVersion,
		CacheDir:  paths.PythonDist(),
		Timeout:   5 * time.Minute,
		Retries:   3,
		RetryWait: time.Second,
	}
}

// Fetcher downloads and unpacks a Distribution, reusing the on-disk cache
type Fetcher struct {
	mu      sync.Mutex // one download at a time
	config  FetchConfig
	client  *resty.Client
	breaker *resilience.Breaker
	logger  *zap.Logger
}

// NewFetcher creates a fetcher. A nil logger disables logging.
func NewFetcher(config FetchConfig, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Minute
	}

	if config.RetryWait <= 0 {
		config.RetryWait = time.Second
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = max(config.Retries, 0)
	retryClient.RetryWaitMin = config.RetryWait
	retryClient.RetryWaitMax = 10 * config.RetryWait
	retryClient.Logger = nil

	client := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(config.Timeout).
		SetHeader("User-Agent", "PyLearn-Backend/1.0").
		SetDoNotParseResponse(true)

	breaker := resilience.New("python-dist", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Fetcher{
		config:  config,
		client:  client,
		breaker: breaker,
		logger:  logger,
	}
}

// Dir is the cache directory for the pinned version
func (f *Fetcher) Dir() string {
	return filepath.Join(f.config.CacheDir, f.config.Version)
}

// Fetch returns the cached distribution, downloading it first if needed
func (f *Fetcher) Fetch(ctx context.Context) (Distribution, error) {
	if err := paths.ValidateVersion(f.config.Version); err != nil {
		return Distribution{}, fmt.Errorf("%w: %v", ErrUnsupportedDist, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if dist, err := f.locate(); err == nil {
		f.logger.Debug("Using cached interpreter", zap.String("wasm", dist.Wasm))
		return dist, nil
	}

	data, err := resilience.Call(ctx, f.breaker, f.download)
	if err != nil {
		return Distribution{}, err
	}

	if f.config.SHA256 != "" {
		sum := utils.NewHasher(utils.SHA256).Hash(data)
		if !strings.EqualFold(sum, f.config.SHA256) {
			return Distribution{}, fmt.Errorf("%w: got %s", ErrChecksumMismatch, sum)
		}
	}

	if err := f.unpack(data); err != nil {
		return Distribution{}, err
	}

	dist, err := f.locate()
	if err != nil {
		return Distribution{}, err
	}
	f.logger.Info("Interpreter distribution ready",
		zap.String("version", f.config.Version),
		zap.String("wasm", dist.Wasm),
	)
	return dist, nil
}

func (f *Fetcher) download(ctx context.Context) ([]byte, error) {
	f.logger.Info("Downloading interpreter distribution", zap.String("url", f.config.URL))

	resp, err := f.client.R().SetContext(ctx).Get(f.config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download distribution: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("failed to download distribution: status %d", resp.StatusCode())
	}

	data, err := io.ReadAll(io.LimitReader(body, maxArtifactLen))
	if err != nil {
		return nil, fmt.Errorf("failed to read distribution: %w", err)
	}
	return data, nil
}

// unpack writes a raw module or extracts a gzip tarball into Dir
func (f *Fetcher) unpack(data []byte) error {
	dir := f.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	mtype := mimetype.Detect(data)
	switch {
	case mtype.Is("application/wasm"):
		return os.WriteFile(filepath.Join(dir, "python.wasm"), data, 0o644)
	case mtype.Is("application/gzip"):
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		return extractTar(gz, filepath.Join(dir, "root"))
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedDist, mtype.String())
	}
}

// locate finds the interpreter module in the cache
func (f *Fetcher) locate() (Distribution, error) {
	dir := f.Dir()

	single := filepath.Join(dir, "python.wasm")
	if _, err := os.Stat(single); err == nil {
		return Distribution{Version: f.config.Version, Wasm: single}, nil
	}

	root := filepath.Join(dir, "root")
	matches, err := doublestar.Glob(os.DirFS(root), wasmPattern)
	if err != nil || len(matches) == 0 {
		return Distribution{}, fmt.Errorf("no interpreter module under %s", root)
	}
	return Distribution{
		Version: f.config.Version,
		Wasm:    filepath.Join(root, filepath.FromSlash(matches[0])),
		Root:    root,
	}, nil
}

// extractTar unpacks regular files and directories, rejecting entries
// that would escape dest
func extractTar(r io.Reader, dest string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tarball: %w", err)
		}

		target, err := paths.Confine(dest, hdr.Name)
		if err != nil {
			return fmt.Errorf("tarball entry escapes destination: %w", err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if hdr.Size > maxEntryLen {
				return fmt.Errorf("tarball entry too large: %s", hdr.Name)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := writeFile(target, tr, fs.FileMode(hdr.Mode).Perm()|0o400); err != nil {
				return err
			}
		}
	}
}

func writeFile(path string, r io.Reader, mode fs.FileMode) error {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
