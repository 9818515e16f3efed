// Package render draws the county dataset as a proportional-symbol SVG map.
package render

import (
	"bufio"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/rotisserie/eris"

	"github.com/sells-group/countymap/internal/county"
	"github.com/sells-group/countymap/internal/geo"
)

// Map defaults match the published county maps.
const (
	DefaultWidth   = 975
	DefaultHeight  = 610
	DefaultScale   = 1300
	DefaultDivisor = 75
	DestinationR   = 10
)

// svgo takes integer coordinates; the viewBox is scaled up by this factor so
// positions keep a tenth of a pixel.
const precision = 10

const stylesheet = `
.background { fill: #ddd; }
.countyCircle { fill: steelblue; fill-opacity: 0.5; stroke: #fff; stroke-width: 2; }
.destinationCircle { fill: crimson; fill-opacity: 0.9; stroke: black; stroke-width: 4; }
`

// Options configures a map.
type Options struct {
	Width   int
	Height  int
	Scale   float64 // projection scale
	Divisor float64 // radius = sqrt(population) / Divisor
	Title   string
}

// DefaultOptions returns the canvas and symbol settings of the published maps.
func DefaultOptions() Options {
	return Options{
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		Scale:   DefaultScale,
		Divisor: DefaultDivisor,
	}
}

// WithDefaults fills unset fields from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Scale <= 0 {
		o.Scale = d.Scale
	}
	if o.Divisor <= 0 {
		o.Divisor = d.Divisor
	}
	return o
}

// Map writes an SVG with one circle per contiguous-US county and a fixed-size
// marker for each destination. Destinations are drawn last so they sit on top.
func Map(w io.Writer, records, destinations []county.Record, opts Options) error {
	opts = opts.WithDefaults()
	proj := geo.NewAlbers(opts.Scale, float64(opts.Width), float64(opts.Height))

	points, err := county.Project(county.FilterContiguous(records), proj, opts.Divisor)
	if err != nil {
		return eris.Wrap(err, "render: project counties")
	}
	marks, err := county.Project(destinations, proj, opts.Divisor)
	if err != nil {
		return eris.Wrap(err, "render: project destinations")
	}

	bw := bufio.NewWriter(w)
	canvas := svg.New(bw)
	canvas.Startview(opts.Width, opts.Height, 0, 0, opts.Width*precision, opts.Height*precision)
	if opts.Title != "" {
		canvas.Title(opts.Title)
	}
	canvas.Style("text/css", stylesheet)
	canvas.Rect(0, 0, opts.Width*precision, opts.Height*precision, `class="background"`)

	canvas.Gid("counties")
	for _, p := range points {
		canvas.Circle(scaled(p.X), scaled(p.Y), scaled(p.Radius), `class="countyCircle"`, `data-geoid="`+p.GEOID+`"`)
	}
	canvas.Gend()

	if len(marks) > 0 {
		canvas.Gid("destinations")
		for _, p := range marks {
			canvas.Circle(scaled(p.X), scaled(p.Y), DestinationR*precision, `class="countyCircle destinationCircle"`, `data-geoid="`+p.GEOID+`"`)
		}
		canvas.Gend()
	}
	canvas.End()

	return eris.Wrap(bw.Flush(), "render: write svg")
}

func scaled(v float64) int {
	return int(math.Round(v * precision))
}
