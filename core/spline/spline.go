// Package spline turns ordered points into smooth SVG curves.
package spline

import (
	"strconv"
	"strings"

	"github.com/civiclens/civiclens/schema"
)

// DefaultTension scales the Catmull-Rom tangents used for every trend chart.
const DefaultTension = 0.5

// Segment is one cubic Bezier piece between two consecutive input points.
type Segment struct {
	Start schema.Point2D
	C1    schema.Point2D
	C2    schema.Point2D
	End   schema.Point2D
}

// At evaluates the segment at t in [0, 1].
func (s Segment) At(t float64) schema.Point2D {
	switch t {
	case 0:
		return s.Start
	case 1:
		return s.End
	}
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return schema.Point2D{
		X: a*s.Start.X + b*s.C1.X + c*s.C2.X + d*s.End.X,
		Y: a*s.Start.Y + b*s.C1.Y + c*s.C2.Y + d*s.End.Y,
	}
}

// Path is a move-to followed by cubic segments.
type Path struct {
	Start    schema.Point2D
	Segments []Segment
	Closed   bool
}

// Empty reports whether the path has no curve to draw.
func (p Path) Empty() bool {
	return len(p.Segments) == 0
}

// String renders the path as SVG path data. An empty path renders as "".
func (p Path) String() string {
	if p.Empty() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("M ")
	writePoint(&sb, p.Start)
	sb.WriteString(p.body())
	if p.Closed {
		sb.WriteString(" Z")
	}
	return sb.String()
}

// body renders the curve commands without the leading move-to.
func (p Path) body() string {
	var sb strings.Builder
	for _, s := range p.Segments {
		sb.WriteString(" C ")
		writePoint(&sb, s.C1)
		sb.WriteByte(' ')
		writePoint(&sb, s.C2)
		sb.WriteByte(' ')
		writePoint(&sb, s.End)
	}
	return sb.String()
}

// Build converts points into a Catmull-Rom spline expressed as cubic Bezier segments.
// The curve passes through every input point. Fewer than two points yield an empty path.
func Build(points []schema.Point2D, tension float64, closed bool) Path {
	if len(points) < 2 {
		return Path{}
	}

	segments := make([]Segment, 0, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		p0 := points[max(i-1, 0)]
		p1 := points[i]
		p2 := points[i+1]
		p3 := p2
		if i+2 < len(points) {
			p3 = points[i+2]
		}

		segments = append(segments, Segment{
			Start: p1,
			C1: schema.Point2D{
				X: p1.X + (p2.X-p0.X)/6*tension,
				Y: p1.Y + (p2.Y-p0.Y)/6*tension,
			},
			C2: schema.Point2D{
				X: p2.X - (p3.X-p1.X)/6*tension,
				Y: p2.Y - (p3.Y-p1.Y)/6*tension,
			},
			End: p2,
		})
	}

	return Path{Start: points[0], Segments: segments, Closed: closed}
}

// SmoothPath renders the default-tension curve through points.
func SmoothPath(points []schema.Point2D, closed bool) string {
	return Build(points, DefaultTension, closed).String()
}

func writePoint(sb *strings.Builder, p schema.Point2D) {
	sb.WriteString(formatNumber(p.X))
	sb.WriteByte(',')
	sb.WriteString(formatNumber(p.Y))
}

// formatNumber prints the shortest decimal that round-trips.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
