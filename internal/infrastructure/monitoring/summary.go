package monitoring

import (
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// DefaultWindowSize is how many recent samples a Window keeps
const DefaultWindowSize = 512

// Summary describes a window of samples
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	Max   float64 `json:"max"`
}

// Window is a fixed-size ring of recent samples
type Window struct {
	mu      sync.Mutex
	samples []float64
	next    int
	full    bool
}

// NewWindow creates a window holding size samples
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Window{samples: make([]float64, size)}
}

// Add records a sample, evicting the oldest when full
func (w *Window) Add(v float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.samples[w.next] = v
	w.next = (w.next + 1) % len(w.samples)
	if w.next == 0 {
		w.full = true
	}
}

// Summary computes statistics over the current samples
func (w *Window) Summary() Summary {
	w.mu.Lock()
	n := w.next
	if w.full {
		n = len(w.samples)
	}
	data := make([]float64, n)
	copy(data, w.samples[:n])
	w.mu.Unlock()

	if n == 0 {
		return Summary{}
	}

	sort.Float64s(data)
	return Summary{
		Count: n,
		Mean:  stat.Mean(data, nil),
		P50:   stat.Quantile(0.5, stat.Empirical, data, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, data, nil),
		Max:   data[n-1],
	}
}
