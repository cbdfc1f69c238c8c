package registry

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// DefaultPattern matches every supported content file under a root
const DefaultPattern = "**/*.{yaml,yml,toml,json}"

// maxRemoteSize caps a remote content document
const maxRemoteSize = 8 * 1024 * 1024

//go:embed seed/*.yaml
var seedFS embed.FS

// Loader reads topics from the seed corpus, a directory or a URL
type Loader struct {
	logger  *zap.Logger
	client  *retryablehttp.Client
	pattern string
}

// NewLoader creates a loader. A nil logger disables logging.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = retryLogger{logger.Sugar()}

	return &Loader{
		logger:  logger,
		client:  client,
		pattern: DefaultPattern,
	}
}

// WithPattern overrides the directory glob
func (l *Loader) WithPattern(pattern string) *Loader {
	l.pattern = pattern
	return l
}

// LoadSeed reads the embedded corpus
func (l *Loader) LoadSeed() ([]Topic, error) {
	return l.loadFS(seedFS, "seed")
}

// LoadDir walks root and decodes every file matching the loader pattern
func (l *Loader) LoadDir(ctx context.Context, root string) ([]Topic, error) {
	if !doublestar.ValidatePattern(l.pattern) {
		return nil, fmt.Errorf("invalid content pattern: %s", l.pattern)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("content directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content directory %s is not a directory", root)
	}

	var (
		mu    sync.Mutex
		files []string
	)
	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		if ok, _ := doublestar.Match(l.pattern, filepath.ToSlash(rel)); ok {
			mu.Lock()
			files = append(files, p)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	// Walk order is nondeterministic
	sort.Strings(files)

	var topics []Topic
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		loaded, err := l.decodeNamed(file, data)
		if err != nil {
			return nil, err
		}
		topics = append(topics, loaded...)
	}

	l.logger.Info("Loaded content directory",
		zap.String("root", root),
		zap.Int("files", len(files)),
		zap.Int("topics", len(topics)),
	)
	return topics, nil
}

// LoadURL fetches one content document over HTTP
func (l *Loader) LoadURL(ctx context.Context, rawURL string) ([]Topic, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid content url: %s", rawURL)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rawURL, err)
	}

	topics, err := l.decodeNamed(u.Path, data)
	if err != nil {
		return nil, err
	}

	l.logger.Info("Loaded remote content", zap.String("url", rawURL), zap.Int("topics", len(topics)))
	return topics, nil
}

func (l *Loader) loadFS(fsys fs.FS, dir string) ([]Topic, error) {
	names, err := doublestar.Glob(fsys, path.Join(dir, "*.{yaml,yml,toml,json}"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	sort.Strings(names)

	var topics []Topic
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		loaded, err := l.decodeNamed(name, data)
		if err != nil {
			return nil, err
		}
		topics = append(topics, loaded...)
	}
	return topics, nil
}

func (l *Loader) decodeNamed(name string, data []byte) ([]Topic, error) {
	format, err := FormatFromName(name)
	if err != nil {
		return nil, err
	}
	topics, err := Decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	l.logger.Debug("Decoded content file", zap.String("file", name), zap.Int("topics", len(topics)))
	return topics, nil
}

// retryLogger adapts zap to retryablehttp's leveled logger
type retryLogger struct {
	s *zap.SugaredLogger
}

func (r retryLogger) Error(msg string, kv ...interface{}) { r.s.Errorw(msg, kv...) }
func (r retryLogger) Info(msg string, kv ...interface{})  { r.s.Infow(msg, kv...) }
func (r retryLogger) Debug(msg string, kv ...interface{}) { r.s.Debugw(msg, kv...) }
func (r retryLogger) Warn(msg string, kv ...interface{})  { r.s.Warnw(msg, kv...) }
