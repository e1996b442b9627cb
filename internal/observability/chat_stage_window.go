package observability

import (
	"math"
	"slices"
	"strings"
	"sync"
	"time"
)

// Chat stage names recorded by the router, in pipeline order.
const (
	StageClassify    = "classify"
	StageContextLoad = "context_load"
	StageGeneration  = "generation"
	StageChatTotal   = "chat_total"
)

// chatStageTargets are p95 budgets in milliseconds.
var chatStageTargets = []struct {
	stage    string
	targetMS float64
}{
	{StageClassify, 5},
	{StageContextLoad, 150},
	{StageGeneration, 8000},
	{StageChatTotal, 9000},
}

type ChatStageStats struct {
	Stage       string  `json:"stage"`
	Samples     int     `json:"samples"`
	LastMS      float64 `json:"last_ms"`
	AvgMS       float64 `json:"avg_ms"`
	P50MS       float64 `json:"p50_ms"`
	P95MS       float64 `json:"p95_ms"`
	TargetP95MS float64 `json:"target_p95_ms"`
	OverTarget  bool    `json:"over_target"`
}

type ChatIndicator struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type ChatStageSnapshot struct {
	GeneratedAt time.Time        `json:"generated_at"`
	WindowSize  int              `json:"window_size"`
	Stages      []ChatStageStats `json:"stages"`
	Indicators  []ChatIndicator  `json:"indicators,omitempty"`
}

// chatStageWindow keeps the last size latencies of each chat stage.
// Stages outside the chat pipeline are ignored.
type chatStageWindow struct {
	mu         sync.Mutex
	size       int
	rings      map[string]*latencyRing
	indicators map[string]int
}

type latencyRing struct {
	ms    []float64
	pos   int
	count int
}

func newChatStageWindow(size int) *chatStageWindow {
	if size <= 0 {
		size = 256
	}
	w := &chatStageWindow{
		size:       size,
		rings:      make(map[string]*latencyRing, len(chatStageTargets)),
		indicators: make(map[string]int),
	}
	for _, t := range chatStageTargets {
		w.rings[t.stage] = &latencyRing{ms: make([]float64, size)}
	}
	return w
}

func (w *chatStageWindow) Observe(stage string, d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ring, ok := w.rings[stage]
	if !ok {
		return
	}
	ring.ms[ring.pos] = float64(d.Microseconds()) / 1000
	ring.pos = (ring.pos + 1) % len(ring.ms)
	if ring.count < len(ring.ms) {
		ring.count++
	}
}

func (w *chatStageWindow) ObserveIndicator(name string) {
	if name = strings.TrimSpace(name); name == "" {
		return
	}
	w.mu.Lock()
	w.indicators[name]++
	w.mu.Unlock()
}

func (w *chatStageWindow) Snapshot() ChatStageSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := ChatStageSnapshot{
		GeneratedAt: time.Now().UTC(),
		WindowSize:  w.size,
		Stages:      make([]ChatStageStats, 0, len(chatStageTargets)),
	}
	for _, t := range chatStageTargets {
		ring := w.rings[t.stage]
		if ring.count == 0 {
			continue
		}
		last := ring.ms[(ring.pos-1+len(ring.ms))%len(ring.ms)]
		samples := slices.Clone(ring.ms[:ring.count])
		slices.Sort(samples)

		sum := 0.0
		for _, v := range samples {
			sum += v
		}
		p95 := percentile(samples, 0.95)
		snap.Stages = append(snap.Stages, ChatStageStats{
			Stage:       t.stage,
			Samples:     ring.count,
			LastMS:      round2(last),
			AvgMS:       round2(sum / float64(ring.count)),
			P50MS:       round2(percentile(samples, 0.50)),
			P95MS:       round2(p95),
			TargetP95MS: t.targetMS,
			OverTarget:  p95 > t.targetMS,
		})
	}

	for name, count := range w.indicators {
		snap.Indicators = append(snap.Indicators, ChatIndicator{Name: name, Count: count})
	}
	slices.SortFunc(snap.Indicators, func(a, b ChatIndicator) int { return strings.Compare(a.Name, b.Name) })
	return snap
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []float64, q float64) float64 {
	idx := q * float64(len(sorted)-1)
	lo, hi := int(math.Floor(idx)), int(math.Ceil(idx))
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
