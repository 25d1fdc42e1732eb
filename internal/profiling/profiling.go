package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Lightweight stage profiler for generation runs.

// Recorder accumulates named durations. The zero value is ready to use.
type Recorder struct {
	mu     sync.Mutex
	totals map[string]time.Duration
	counts map[string]int
}

var defaultRecorder = &Recorder{}

// Default returns the process-wide recorder used by Track.
func Default() *Recorder { return defaultRecorder }

// Track returns a stop function that records the elapsed time under name.
// Usage: defer profiling.Track("terrain.Surface")()
func Track(name string) func() {
	return defaultRecorder.Track(name)
}

// Reset clears the process-wide totals.
func Reset() { defaultRecorder.Reset() }

// Snapshot copies the process-wide totals.
func Snapshot() map[string]time.Duration { return defaultRecorder.Snapshot() }

// TopN formats the n slowest process-wide entries.
func TopN(n int) string { return defaultRecorder.TopN(n) }

// Track returns a stop function that adds the elapsed time to name.
func (r *Recorder) Track(name string) func() {
	start := time.Now()
	return func() {
		r.Add(name, time.Since(start))
	}
}

// Add records d under name.
func (r *Recorder) Add(name string, d time.Duration) {
	r.mu.Lock()
	if r.totals == nil {
		r.totals = make(map[string]time.Duration)
		r.counts = make(map[string]int)
	}
	r.totals[name] += d
	r.counts[name]++
	r.mu.Unlock()
}

// Reset drops every recorded entry.
func (r *Recorder) Reset() {
	r.mu.Lock()
	clear(r.totals)
	clear(r.counts)
	r.mu.Unlock()
}

// Snapshot returns a copy of the totals.
func (r *Recorder) Snapshot() map[string]time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]time.Duration, len(r.totals))
	for k, v := range r.totals {
		out[k] = v
	}
	return out
}

// Count reports how many times name was recorded.
func (r *Recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[name]
}

// TopN formats the n largest totals.
// Example: "terrain.Elevations:4.2ms, meshing.BuildSurface:2.1ms"
func (r *Recorder) TopN(n int) string {
	ss := r.Snapshot()
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].dur != list[j].dur {
			return list[i].dur > list[j].dur
		}
		return list[i].name < list[j].name
	})
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, list[i].name+":"+formatMs(list[i].dur))
	}
	return strings.Join(parts, ", ")
}

// formatMs keeps one decimal and drops a trailing ".0".
func formatMs(d time.Duration) string {
	tenths := d.Microseconds() / 100
	whole, frac := tenths/10, tenths%10
	if frac == 0 {
		return strconv.FormatInt(whole, 10) + "ms"
	}
	return strconv.FormatInt(whole, 10) + "." + strconv.FormatInt(frac, 10) + "ms"
}
