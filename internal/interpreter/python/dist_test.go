package python

import (
	"archive/tar"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PyLearn/backend/internal/shared/utils"
)

// emptyModule is the smallest valid WebAssembly binary
var emptyModule = []byte("\x00asm\x01\x00\x00\x00")

func tarball(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, data := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(data)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func serve(t *testing.T, status int, body []byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func testFetcher(t *testing.T, url, digest string) *Fetcher {
	t.Helper()
	return NewFetcher(FetchConfig{
		URL:       url,
		Version:   "test",
		SHA256:    digest,
		CacheDir:  t.TempDir(),
		Retries:   2,
		RetryWait: time.Millisecond,
	}, nil)
}

func TestFetchRawModule(t *testing.T) {
	srv, hits := serve(t, http.StatusOK, emptyModule)
	f := testFetcher(t, srv.URL+"/python.wasm", "")

	dist, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", dist.Version)
	assert.Empty(t, dist.Root)
	assert.FileExists(t, dist.Wasm)

	// Second fetch is served from the cache
	_, err = f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchTarball(t *testing.T) {
	archive := tarball(t, map[string][]byte{
		"bin/python-3.12.0.wasm":         emptyModule,
		"usr/local/lib/python3.12/os.py": []byte("# stub\n"),
	})
	srv, _ := serve(t, http.StatusOK, archive)
	f := testFetcher(t, srv.URL+"/python.tar.gz", utils.NewHasher(utils.SHA256).Hash(archive))

	dist, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.Dir(), "root", "bin", "python-3.12.0.wasm"), dist.Wasm)
	assert.Equal(t, filepath.Join(f.Dir(), "root"), dist.Root)
	assert.Equal(t, "/usr/local", pythonHome(dist.Root))
}

func TestFetchChecksumMismatch(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, emptyModule)
	f := testFetcher(t, srv.URL, "deadbeef")

	_, err := f.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestFetchUnsupportedArtifact(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, []byte("<html>not here</html>"))
	f := testFetcher(t, srv.URL, "")

	_, err := f.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrUnsupportedDist)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(emptyModule)
	}))
	t.Cleanup(srv.Close)

	f := testFetcher(t, srv.URL+"/python.wasm", "")
	dist, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, dist.Wasm)
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetchGivesUpAfterRetries(t *testing.T) {
	srv, hits := serve(t, http.StatusBadGateway, nil)
	f := testFetcher(t, srv.URL, "")

	_, err := f.Fetch(context.Background())
	assert.Error(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetchBreakerOpens(t *testing.T) {
	srv, hits := serve(t, http.StatusNotFound, nil)
	f := testFetcher(t, srv.URL, "")

	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background())
		assert.Error(t, err)
	}
	_, err := f.Fetch(context.Background())
	assert.Error(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestExtractTarConfinesEntries(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "../../etc/evil", Mode: 0o644, Size: 1, Typeflag: tar.TypeReg}))
	_, _ = tw.Write([]byte("x"))
	require.NoError(t, tw.Close())

	dest := t.TempDir()
	require.NoError(t, extractTar(&buf, dest))

	// The entry is re-rooted inside dest rather than written outside it
	_, err := os.Stat(filepath.Join(dest, "etc", "evil"))
	assert.NoError(t, err)
}
