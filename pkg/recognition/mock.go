package recognition

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"CalorAI/internal/entity"
	"CalorAI/pkg/imaging"
	"CalorAI/pkg/nutrition"
)

type MockOption func(*Mock)

// Mock simulates a recognition model by sampling the embedded nutrition table.
// The same seed always yields the same names, portions and confidences.
type Mock struct {
	mu  sync.Mutex
	rng *rand.Rand

	candidates  []string
	portions    []float64
	minItems    int
	maxItems    int
	minConf     float64
	maxConf     float64
	minItemConf float64
	maxItemConf float64
	minDelay    time.Duration
	maxDelay    time.Duration
}

func NewMock(opts ...MockOption) *Mock {
	m := &Mock{
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		candidates:  FoodNames(),
		portions:    []float64{100, 150, 200, 250, 300},
		minItems:    1,
		maxItems:    3,
		minConf:     0.85,
		maxConf:     0.98,
		minItemConf: 0.85,
		maxItemConf: 0.99,
		minDelay:    500 * time.Millisecond,
		maxDelay:    1500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func WithSeed(seed int64) MockOption {
	return func(m *Mock) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

// WithCandidates restricts sampling to the given names. Names missing from the
// table are ignored and repeats are collapsed.
func WithCandidates(names ...string) MockOption {
	return func(m *Mock) {
		seen := make(map[string]struct{}, len(names))
		var known []string
		for _, n := range names {
			key := strings.ToLower(strings.TrimSpace(n))
			if _, ok := Lookup(key); !ok {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			known = append(known, key)
		}
		if len(known) > 0 {
			m.candidates = known
		}
	}
}

// WithPortions sets the gram weights sampled per item. Non-positive weights
// are ignored.
func WithPortions(grams ...float64) MockOption {
	return func(m *Mock) {
		var valid []float64
		for _, g := range grams {
			if g > 0 {
				valid = append(valid, g)
			}
		}
		if len(valid) > 0 {
			m.portions = valid
		}
	}
}

func WithItemRange(min, max int) MockOption {
	return func(m *Mock) {
		if min >= 1 && max >= min {
			m.minItems, m.maxItems = min, max
		}
	}
}

func WithConfidenceRange(min, max float64) MockOption {
	return func(m *Mock) {
		if min >= 0 && max <= 1 && max >= min {
			m.minConf, m.maxConf = min, max
		}
	}
}

func WithItemConfidenceRange(min, max float64) MockOption {
	return func(m *Mock) {
		if min >= 0 && max <= 1 && max >= min {
			m.minItemConf, m.maxItemConf = min, max
		}
	}
}

func WithDelay(min, max time.Duration) MockOption {
	return func(m *Mock) {
		if min >= 0 && max >= min {
			m.minDelay, m.maxDelay = min, max
		}
	}
}

func (m *Mock) Name() string {
	return ModeMock
}

func (m *Mock) Recognize(ctx context.Context, img *imaging.NormalizedImage) (Result, error) {
	res, delay := m.sample()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	}

	return res, nil
}

func (m *Mock) sample() (Result, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delay := m.minDelay + time.Duration(m.rng.Float64()*float64(m.maxDelay-m.minDelay))

	n := m.minItems + m.rng.Intn(m.maxItems-m.minItems+1)
	if n > len(m.candidates) {
		n = len(m.candidates)
	}

	confidence := nutrition.Round(m.uniform(m.minConf, m.maxConf), 2)

	detections := make([]entity.FoodDetection, 0, n)
	for _, idx := range m.rng.Perm(len(m.candidates))[:n] {
		name := m.candidates[idx]
		food, _ := Lookup(name)

		grams := m.portions[m.rng.Intn(len(m.portions))]
		scale := grams / 100

		detections = append(detections, entity.FoodDetection{
			Name:        name,
			Confidence:  nutrition.Round(m.uniform(m.minItemConf, m.maxItemConf), 2),
			Calories:    nutrition.Round(food.Calories*scale, 1),
			Protein:     nutrition.Round(food.Protein*scale, 1),
			Carbs:       nutrition.Round(food.Carbs*scale, 1),
			Fats:        nutrition.Round(food.Fats*scale, 1),
			Fiber:       nutrition.Round(food.Fiber*scale, 1),
			Sugar:       nutrition.Round(food.Sugar*scale, 1),
			Sodium:      nutrition.Round(food.Sodium*scale, 1),
			Portion:     PortionText(name, grams),
			WeightGrams: grams,
		})
	}

	return Result{Detections: detections, Confidence: confidence}, delay
}

func (m *Mock) uniform(min, max float64) float64 {
	return min + m.rng.Float64()*(max-min)
}
