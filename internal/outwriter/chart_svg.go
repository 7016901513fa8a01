package outwriter

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/civiclens/civiclens/core/spline"
	"github.com/civiclens/civiclens/schema"
)

// Gap between the chart frame and its axis labels.
const (
	tickLabelGap  = 15
	xLabelOffset  = 25
	xTitleOffset  = 45
	gridCellWidth = 100
)

// writeTrendSVG renders a trend as a standalone SVG document in the dashboard layout:
// dashed value grid, time labels, a gradient area, the smoothed line and its points.
func writeTrendSVG(w io.Writer, result schema.TrendResult, style ChartStyle) error {
	frame := result.Frame
	if frame == (schema.ChartFrame{}) {
		frame = spline.DefaultFrame
	}

	var svg strings.Builder
	fmt.Fprintf(&svg, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, spline.CanvasWidth, spline.CanvasHeight, spline.CanvasWidth, spline.CanvasHeight)

	gridHeight := spline.CanvasHeight / 10
	fmt.Fprintf(&svg, `<defs>
<pattern id="grid" width="%d" height="%d" patternUnits="userSpaceOnUse"><path d="M %d 0 L 0 0 0 %d" fill="none" stroke="%s" stroke-width="0.5"/></pattern>
<linearGradient id="areaGradient" x1="0%%" y1="0%%" x2="0%%" y2="100%%"><stop offset="0%%" stop-color="%s" stop-opacity="%s"/><stop offset="100%%" stop-color="%s" stop-opacity="%s"/></linearGradient>
</defs>
`, gridCellWidth, gridHeight, gridCellWidth, gridHeight, style.Colors.Grid,
		style.Colors.Area, svgNum(style.Colors.AreaTop), style.Colors.Area, svgNum(style.Colors.AreaBottom))

	fmt.Fprintf(&svg, `<rect width="%d" height="%d" fill="%s"/>
<rect width="%d" height="%d" fill="url(#grid)"/>
`, spline.CanvasWidth, spline.CanvasHeight, style.Colors.Background, spline.CanvasWidth, spline.CanvasHeight)

	if result.Name != "" {
		svg.WriteString(svgText(frame.Left, float64(style.Font.Size), "start", style.Font, style.Colors.Title, result.Name, "bold"))
	}

	// Value grid
	right := frame.Left + frame.Width
	for _, tick := range result.Ticks {
		fmt.Fprintf(&svg, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="1" stroke-dasharray="5,5"/>
`, svgNum(frame.Left), svgNum(tick.Y), svgNum(right), svgNum(tick.Y), style.Colors.Axis)
		label := strconv.FormatFloat(math.Round(tick.Value), 'f', -1, 64)
		svg.WriteString(svgText(frame.Left-tickLabelGap, tick.Y+5, "end", style.Font, style.Colors.Text, label, ""))
	}

	// Time labels
	titleFont := FontStyle{Family: style.Font.Family, Size: style.Font.Size * 6 / 7}
	svg.WriteString(svgText(frame.Left+frame.Width/2, frame.Baseline+xTitleOffset, "middle", titleFont, style.Colors.Title, style.Labels.XAxisTitle, "600"))
	step := labelStep(len(result.Points), style.Labels.MaxXLabels)
	for i, p := range result.Points {
		if i%step != 0 && i != len(result.Points)-1 {
			continue
		}
		if i >= len(result.Labels) {
			break
		}
		svg.WriteString(svgText(p.X, frame.Baseline+xLabelOffset, "middle", style.Font, style.Colors.Text, result.Labels[i], ""))
	}

	if result.Area != "" {
		fmt.Fprintf(&svg, "<path d=\"%s\" fill=\"url(#areaGradient)\"/>\n", result.Area)
	}
	if result.Path != "" {
		fmt.Fprintf(&svg, "<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%s\" stroke-linecap=\"round\" stroke-linejoin=\"round\"/>\n",
			result.Path, style.Colors.Line, svgNum(style.Line.Width))
	}

	if style.Line.ShowPoints {
		for i, p := range result.Points {
			x, y := svgNum(p.X), svgNum(p.Y)
			svg.WriteString("<g>")
			fmt.Fprintf(&svg, `<circle cx="%s" cy="%s" r="%s" fill="%s" opacity="0.2"/>`, x, y, svgNum(style.Line.GlowRadius), style.Colors.Point)
			fmt.Fprintf(&svg, `<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="white" stroke-width="2">`, x, y, svgNum(style.Line.PointRadius), style.Colors.Point)
			if i < len(result.Labels) && i < len(result.Values) {
				svg.WriteString("<title>")
				_ = xml.EscapeText(&svg, []byte(result.Labels[i]+": "+strconv.FormatFloat(result.Values[i], 'f', -1, 64)))
				svg.WriteString("</title>")
			}
			svg.WriteString("</circle></g>\n")
		}
	}

	if len(result.Points) == 0 {
		svg.WriteString(svgText(spline.CanvasWidth/2, spline.CanvasHeight/2, "middle", style.Font, style.Colors.Text, "No data", ""))
	}

	svg.WriteString("</svg>\n")
	_, err := io.WriteString(w, svg.String())
	return err
}

// svgText renders one escaped text element.
func svgText(x, y float64, anchor string, font FontStyle, fill, text, weight string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<text x="%s" y="%s" text-anchor="%s" font-family="%s" font-size="%d" fill="%s"`,
		svgNum(x), svgNum(y), svgAttr(anchor), svgAttr(font.Family), font.Size, svgAttr(fill))
	if weight != "" {
		fmt.Fprintf(&sb, ` font-weight="%s"`, svgAttr(weight))
	}
	sb.WriteString(">")
	_ = xml.EscapeText(&sb, []byte(text))
	sb.WriteString("</text>\n")
	return sb.String()
}

// svgAttr escapes a value for a double-quoted attribute.
func svgAttr(v string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(v))
	return sb.String()
}

// labelStep thins x labels so at most limit of them are drawn. limit 0 draws all.
func labelStep(n, limit int) int {
	if limit <= 0 || n <= limit {
		return 1
	}
	return (n + limit - 1) / limit
}

func svgNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
