package freqs

import (
	"fmt"
	"math"
	"sort"
)

// Counter accumulates counts per key and turns them into smoothed counts
type Counter interface {
	// Inc adds amount to the count stored under key
	Inc(key uint64, amount int64)

	// Smooth finalizes the frequency-of-frequencies tables. Must be called after the last Inc.
	Smooth()

	// Smoother returns the smoothed count for a raw count. Smoother(0) is the count of a single
	// unseen key; it is strictly positive and never above Smoother(1).
	Smoother(count int64) float64

	// Total returns the sum of all increments
	Total() int64

	// Name returns the name of the smoothing algorithm
	Name() string
}

const (
	SmootherGoodTuring = "good-turing"
	SmootherAddK       = "add-k"
)

// NewCounter creates a counter by smoother name
func NewCounter(name string) (Counter, error) {
	switch name {
	case "", SmootherGoodTuring:
		return NewGoodTuringCounter(), nil
	case SmootherAddK:
		return NewAddKCounter(1.0), nil
	default:
		return nil, fmt.Errorf("unknown smoother: %s", name)
	}
}

// GoodTuringCounter implements Simple Good-Turing smoothing (Gale & Sampson, 1995).
//
// For the distinct observed counts r with N_r keys each, Z_r = N_r / (0.5 (t - q)) where q and t are
// the neighbouring observed counts. log Z_r is regressed on log r giving S(r) = exp(a + b log r),
// with the slope b capped at -1. The smoothed count r* is the Turing estimate (r+1) N_{r+1} / N_r
// while it differs significantly from the log-linear estimate (r+1) S(r+1) / S(r), and the
// log-linear estimate from then on. r* is made non-decreasing in r.
//
// Smoother(0) = min(N_1 / N, Smoother(1)), the expected count of one unseen key. It never exceeds the
// smoothed count of a key seen once. When no key was seen exactly once N_1 is taken as 0.5.
type GoodTuringCounter struct {
	counts   map[uint64]int64
	total    int64
	smoothed bool

	rs        []int64   // Distinct positive counts, ascending
	rStar     []float64 // Smoothed counts aligned with rs
	n1        int64     // Keys seen exactly once
	intercept float64
	slope     float64
}

// NewGoodTuringCounter creates an empty Good-Turing counter
func NewGoodTuringCounter() *GoodTuringCounter {
	return &GoodTuringCounter{
		counts: make(map[uint64]int64),
		slope:  -1,
	}
}

func (c *GoodTuringCounter) Inc(key uint64, amount int64) {
	c.counts[key] += amount
	c.total += amount
	c.smoothed = false
}

func (c *GoodTuringCounter) Total() int64 {
	return c.total
}

func (c *GoodTuringCounter) Name() string {
	return SmootherGoodTuring
}

// CountOfCount returns N_r, the number of keys whose count is r
func (c *GoodTuringCounter) CountOfCount(r int64) int64 {
	var n int64
	for _, count := range c.counts {
		if count == r {
			n++
		}
	}
	return n
}

func (c *GoodTuringCounter) Smooth() {
	countOfCounts := make(map[int64]int64)
	for _, count := range c.counts {
		if count > 0 {
			countOfCounts[count]++
		}
	}

	c.rs = c.rs[:0]
	for r := range countOfCounts {
		c.rs = append(c.rs, r)
	}
	sort.Slice(c.rs, func(i, j int) bool { return c.rs[i] < c.rs[j] })
	c.n1 = countOfCounts[1]
	c.rStar = make([]float64, len(c.rs))
	c.smoothed = true

	if len(c.rs) == 0 {
		return
	}

	c.fitLogLinear(countOfCounts)

	useTuring := true
	for i, r := range c.rs {
		nr := float64(countOfCounts[r])
		y := c.logLinear(r)

		if useTuring {
			nNext, ok := countOfCounts[r+1]
			if !ok {
				useTuring = false
			} else {
				next := float64(nNext)
				x := float64(r+1) * next / nr
				sd := 1.96 * math.Sqrt(float64((r+1)*(r+1))*next/(nr*nr)*(1+next/nr))
				if math.Abs(x-y) <= sd {
					useTuring = false
				} else {
					c.rStar[i] = x
				}
			}
		}
		if !useTuring {
			c.rStar[i] = y
		}
		if i > 0 && c.rStar[i] < c.rStar[i-1] {
			c.rStar[i] = c.rStar[i-1]
		}
	}
}

// fitLogLinear fits log Z_r = a + b log r by least squares
func (c *GoodTuringCounter) fitLogLinear(countOfCounts map[int64]int64) {
	k := len(c.rs)
	logR := make([]float64, k)
	logZ := make([]float64, k)
	for i, r := range c.rs {
		var q, t int64
		if i > 0 {
			q = c.rs[i-1]
		}
		if i < k-1 {
			t = c.rs[i+1]
		} else {
			t = 2*r - q
		}
		z := float64(countOfCounts[r]) / (0.5 * float64(t-q))
		logR[i] = math.Log(float64(r))
		logZ[i] = math.Log(z)
	}

	if k == 1 {
		c.slope = -1
		c.intercept = logZ[0] - c.slope*logR[0]
		return
	}

	var meanX, meanY float64
	for i := range logR {
		meanX += logR[i]
		meanY += logZ[i]
	}
	meanX /= float64(k)
	meanY /= float64(k)

	var sxy, sxx float64
	for i := range logR {
		dx := logR[i] - meanX
		sxy += dx * (logZ[i] - meanY)
		sxx += dx * dx
	}

	slope := -1.0
	if sxx > 0 {
		slope = sxy / sxx
	}
	// A slope above -1 would let r* exceed r
	if slope > -1 {
		slope = -1
	}
	c.slope = slope
	c.intercept = meanY - slope*meanX
}

// logLinear returns (r+1) S(r+1) / S(r)
func (c *GoodTuringCounter) logLinear(r int64) float64 {
	rf := float64(r)
	return (rf + 1) * math.Exp(c.slope*(math.Log(rf+1)-math.Log(rf)))
}

func (c *GoodTuringCounter) Smoother(count int64) float64 {
	if !c.smoothed {
		c.Smooth()
	}

	if count <= 0 {
		return c.unseen()
	}

	if len(c.rs) == 0 {
		return float64(count)
	}

	idx := sort.Search(len(c.rs), func(i int) bool { return c.rs[i] >= count })
	if idx < len(c.rs) && c.rs[idx] == count {
		return c.rStar[idx]
	}

	// Unobserved count: log-linear estimate bounded by its observed neighbours
	y := c.logLinear(count)
	if idx > 0 && y < c.rStar[idx-1] {
		y = c.rStar[idx-1]
	}
	if idx < len(c.rs) && y > c.rStar[idx] {
		y = c.rStar[idx]
	}
	return y
}

// unseen returns the expected count of a single unseen key, N_1 / N, capped at Smoother(1)
func (c *GoodTuringCounter) unseen() float64 {
	n1 := float64(c.n1)
	if n1 == 0 {
		n1 = 0.5
	}
	p0 := n1
	if c.total > 0 {
		p0 = n1 / float64(c.total)
	}
	if s1 := c.Smoother(1); s1 < p0 {
		p0 = s1
	}
	return p0
}

// AddKCounter implements additive discounting. With V observed keys plus one unseen class,
// Smoother(r) = (r + k) N / (N + k (V + 1)).
type AddKCounter struct {
	k      float64
	counts map[uint64]int64
	total  int64
	keys   int
}

// NewAddKCounter creates a new add-k counter
func NewAddKCounter(k float64) *AddKCounter {
	if k <= 0 {
		k = 1.0 // Default to Laplace smoothing
	}
	return &AddKCounter{k: k, counts: make(map[uint64]int64)}
}

func (c *AddKCounter) Inc(key uint64, amount int64) {
	c.counts[key] += amount
	c.total += amount
}

func (c *AddKCounter) Smooth() {
	c.keys = 0
	for _, count := range c.counts {
		if count > 0 {
			c.keys++
		}
	}
}

func (c *AddKCounter) Smoother(count int64) float64 {
	if count < 0 {
		count = 0
	}
	total := float64(c.total)
	if total <= 0 {
		return float64(count) + c.k
	}
	return (float64(count) + c.k) * total / (total + c.k*float64(c.keys+1))
}

func (c *AddKCounter) Total() int64 {
	return c.total
}

func (c *AddKCounter) Name() string {
	return SmootherAddK
}
