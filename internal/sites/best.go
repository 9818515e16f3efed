package sites

import (
	"context"
	"math"
	"runtime"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/countymap/internal/geo"
)

// DefaultChunkSize is how many combinations are materialised per round.
const DefaultChunkSize = 100000

// Options tunes Best.
type Options struct {
	Concurrency int  // parallel evaluators; 0 = GOMAXPROCS
	ChunkSize   int  // combinations per round; 0 = DefaultChunkSize
	Squared     bool // square each county's weighted distance before summing
}

// Result is the chosen placement.
type Result struct {
	Sites     []Site
	Cost      float64
	Evaluated int64 // combinations scored
}

// Points returns the chosen centroids in index order.
func (r *Result) Points() []geo.Point {
	pts := make([]geo.Point, len(r.Sites))
	for i, s := range r.Sites {
		pts[i] = s.Point
	}
	return pts
}

// Best tries every k-combination of sites and returns the one with the
// lowest cost. A county's weighted distance to a choice is
// distance_km² × population, taken from its closest chosen site; the cost
// sums those (squared again when opts.Squared). Equal costs keep the
// lexicographically first combination.
func Best(ctx context.Context, sites []Site, k int, opts Options) (*Result, error) {
	n := len(sites)
	if k < 1 {
		return nil, eris.Errorf("sites: k must be positive, got %d", k)
	}
	if k > n {
		return nil, eris.Errorf("sites: k=%d exceeds %d candidate counties", k, n)
	}
	for i, s := range sites {
		if s.Index != i {
			return nil, eris.Errorf("sites: site %d has index %d", i, s.Index)
		}
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}

	log := zap.L().With(
		zap.String("component", "sites.best"),
		zap.Int("counties", n),
		zap.Int("k", k),
	)
	log.Info("searching placements", zap.Bool("squared", opts.Squared), zap.Int("concurrency", opts.Concurrency))

	cache := newDistanceCache(sites)
	combos := newCombinations(n, k)

	best := candidate{cost: math.Inf(1)}
	var evaluated int64

	for {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "sites: search cancelled")
		}

		chunk := combos.take(opts.ChunkSize)
		if len(chunk) == 0 {
			break
		}

		parts := splitChunk(chunk, opts.Concurrency)
		results := make([]candidate, len(parts))

		g, gctx := errgroup.WithContext(ctx)
		for i, part := range parts {
			g.Go(func() error {
				c, err := cache.bestOf(gctx, part, opts.Squared)
				results[i] = c
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, eris.Wrap(err, "sites: search cancelled")
		}

		for _, c := range results {
			if c.cost < best.cost {
				best = c
			}
		}
		evaluated += int64(len(chunk))
		log.Debug("chunk scored", zap.Int64("evaluated", evaluated), zap.Float64("best_cost", best.cost))
	}

	res := &Result{Cost: best.cost, Evaluated: evaluated}
	for _, idx := range best.combo {
		res.Sites = append(res.Sites, sites[idx])
	}
	log.Info("placement found", zap.Int64("evaluated", evaluated), zap.Float64("cost", best.cost))
	return res, nil
}

type candidate struct {
	cost  float64
	combo []int
}

// distanceCache holds distance_km(i, j)² × population(j) for every pair.
type distanceCache struct {
	n       int
	entries []float64
}

func newDistanceCache(sites []Site) *distanceCache {
	n := len(sites)
	c := &distanceCache{n: n, entries: make([]float64, n*n)}
	for i, from := range sites {
		row := c.entries[i*n : (i+1)*n]
		for j, to := range sites {
			d := geo.DistanceKM(from.Point, to.Point)
			row[j] = d * d * float64(to.Population)
		}
	}
	return c
}

func (c *distanceCache) cost(combo []int, squared bool) float64 {
	var total float64
	for j := 0; j < c.n; j++ {
		m := math.Inf(1)
		for _, s := range combo {
			if v := c.entries[s*c.n+j]; v < m {
				m = v
			}
		}
		if squared {
			m *= m
		}
		total += m
	}
	return total
}

func (c *distanceCache) bestOf(ctx context.Context, combos [][]int, squared bool) (candidate, error) {
	best := candidate{cost: math.Inf(1)}
	for i, combo := range combos {
		if i%1024 == 0 && ctx.Err() != nil {
			return best, ctx.Err()
		}
		if v := c.cost(combo, squared); v < best.cost || best.combo == nil {
			best = candidate{cost: v, combo: combo}
		}
	}
	return best, nil
}

func splitChunk(chunk [][]int, parts int) [][][]int {
	if parts > len(chunk) {
		parts = len(chunk)
	}
	size := (len(chunk) + parts - 1) / parts
	out := make([][][]int, 0, parts)
	for start := 0; start < len(chunk); start += size {
		out = append(out, chunk[start:min(start+size, len(chunk))])
	}
	return out
}

// combinations enumerates k-subsets of 0..n-1 in lexicographic order.
type combinations struct {
	n, k int
	next []int
	done bool
}

func newCombinations(n, k int) *combinations {
	first := make([]int, k)
	for i := range first {
		first[i] = i
	}
	return &combinations{n: n, k: k, next: first, done: k > n}
}

func (c *combinations) take(limit int) [][]int {
	var out [][]int
	for !c.done && len(out) < limit {
		out = append(out, append([]int(nil), c.next...))
		c.advance()
	}
	return out
}

func (c *combinations) advance() {
	i := c.k - 1
	for i >= 0 && c.next[i] == c.n-c.k+i {
		i--
	}
	if i < 0 {
		c.done = true
		return
	}
	c.next[i]++
	for j := i + 1; j < c.k; j++ {
		c.next[j] = c.next[j-1] + 1
	}
}
