package geo

import "math"

const (
	radians = math.Pi / 180
	epsilon = 1e-6
)

// ScreenPoint is a projected position in canvas pixels, origin top-left.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Projector maps geographic points onto a canvas.
type Projector interface {
	Project(p Point) ScreenPoint
}

// ConicOptions parameterizes an equal-area conic projection. Angles are in
// degrees. Center is expressed in the rotated frame and lands on Translate.
type ConicOptions struct {
	Parallels [2]float64
	Rotate    float64
	Center    [2]float64
	Scale     float64
	Translate [2]float64
}

// Conic is an Albers equal-area conic projection on the unit sphere, scaled
// and translated onto a canvas. It holds no mutable state.
type Conic struct {
	raw    func(lambda, phi float64) (float64, float64)
	rotate float64
	k      float64
	dx, dy float64
}

// AlbersUSA returns the options of the standard contiguous-US Albers
// projection (parallels 29.5/45.5, rotated 96°W, centered on 38.7°N) with
// the given scale, centered on a width×height canvas.
func AlbersUSA(scale, width, height float64) ConicOptions {
	return ConicOptions{
		Parallels: [2]float64{29.5, 45.5},
		Rotate:    96,
		Center:    [2]float64{-0.6, 38.7},
		Scale:     scale,
		Translate: [2]float64{width / 2, height / 2},
	}
}

// NewAlbers builds the contiguous-US Albers projection for a canvas.
func NewAlbers(scale, width, height float64) *Conic {
	return NewConic(AlbersUSA(scale, width, height))
}

// NewConic builds an equal-area conic projection from opts.
func NewConic(opts ConicOptions) *Conic {
	c := &Conic{
		raw:    conicEqualAreaRaw(opts.Parallels[0]*radians, opts.Parallels[1]*radians),
		rotate: opts.Rotate * radians,
		k:      opts.Scale,
	}
	cx, cy := c.raw(opts.Center[0]*radians, opts.Center[1]*radians)
	c.dx = opts.Translate[0] - c.k*cx
	c.dy = opts.Translate[1] + c.k*cy
	return c
}

// Project implements Projector.
func (c *Conic) Project(p Point) ScreenPoint {
	lambda := p.Lon*radians + c.rotate
	if math.Abs(lambda) > math.Pi {
		lambda -= math.Round(lambda/(2*math.Pi)) * 2 * math.Pi
	}
	x, y := c.raw(lambda, p.Lat*radians)
	return ScreenPoint{X: c.dx + c.k*x, Y: c.dy - c.k*y}
}

func conicEqualAreaRaw(phi0, phi1 float64) func(lambda, phi float64) (float64, float64) {
	sy0 := math.Sin(phi0)
	n := (sy0 + math.Sin(phi1)) / 2

	if math.Abs(n) < epsilon {
		cosPhi0 := math.Cos(phi0)
		return func(lambda, phi float64) (float64, float64) {
			return lambda * cosPhi0, math.Sin(phi) / cosPhi0
		}
	}

	c := 1 + sy0*(2*n-sy0)
	r0 := math.Sqrt(c) / n
	return func(lambda, phi float64) (float64, float64) {
		r := math.Sqrt(c-2*n*math.Sin(phi)) / n
		lambda *= n
		return r * math.Sin(lambda), r0 - r*math.Cos(lambda)
	}
}

// SymbolRadius returns the proportional-symbol radius for a population so
// that symbol area scales with population. Non-positive populations and
// divisors yield 0.
func SymbolRadius(population int, divisor float64) float64 {
	if population <= 0 || divisor <= 0 {
		return 0
	}
	return math.Sqrt(float64(population)) / divisor
}
