package outwriter

import (
	"fmt"
	"os"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"gopkg.in/yaml.v3"
)

// ChartStyle controls the look of rendered trend charts.
// It is loaded from the YAML file named by --chart-style; omitted keys keep their defaults.
type ChartStyle struct {
	Font   FontStyle   `yaml:"font"`
	Colors ColorStyle  `yaml:"colors"`
	Line   LineStyle   `yaml:"line"`
	Labels LabelStyle  `yaml:"labels"`
	Image  ImageLayout `yaml:"image"`
}

// FontStyle is the typeface used for axis text.
type FontStyle struct {
	Family string `yaml:"family"`
	Size   int    `yaml:"size"`
}

// ColorStyle holds hex colors for each chart element.
type ColorStyle struct {
	Background string  `yaml:"background"`
	Grid       string  `yaml:"grid"`
	Axis       string  `yaml:"axis"`
	Line       string  `yaml:"line"`
	Area       string  `yaml:"area"`
	Point      string  `yaml:"point"`
	Text       string  `yaml:"text"`
	Title      string  `yaml:"title"`
	AreaTop    float64 `yaml:"area_top_opacity"`
	AreaBottom float64 `yaml:"area_bottom_opacity"`
}

// LineStyle sizes the curve and its point markers.
type LineStyle struct {
	Width       float64 `yaml:"width"`
	PointRadius float64 `yaml:"point_radius"`
	GlowRadius  float64 `yaml:"glow_radius"`
	ShowPoints  bool    `yaml:"show_points"`
}

// LabelStyle controls the axis labels.
type LabelStyle struct {
	XAxisTitle string `yaml:"x_axis_title"`
	MaxXLabels int    `yaml:"max_x_labels"`
}

// ImageLayout sizes raster output.
type ImageLayout struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// DefaultChartStyle returns the dashboard's light theme.
func DefaultChartStyle() ChartStyle {
	return ChartStyle{
		Font: FontStyle{
			Family: "Inter, Arial, sans-serif",
			Size:   28,
		},
		Colors: ColorStyle{
			Background: "#ffffff",
			Grid:       "#e4eef7",
			Axis:       "#c9ddee",
			Line:       "#6BC04A",
			Area:       "#6BC04A",
			Point:      "#6BC04A",
			Text:       "#52525b",
			Title:      "#4A8EC6",
			AreaTop:    0.08,
			AreaBottom: 0.01,
		},
		Line: LineStyle{
			Width:       4,
			PointRadius: 4,
			GlowRadius:  8,
			ShowPoints:  true,
		},
		Labels: LabelStyle{
			XAxisTitle: "Time",
			MaxXLabels: 12,
		},
		Image: ImageLayout{
			Width:  1200,
			Height: 420,
		},
	}
}

// LoadChartStyle reads a style file on top of the defaults. An empty path returns the defaults.
func LoadChartStyle(path string) (ChartStyle, error) {
	style := DefaultChartStyle()
	if path == "" {
		return style, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ChartStyle{}, fmt.Errorf("error reading chart style file: %w", err)
	}
	if err := yaml.Unmarshal(data, &style); err != nil {
		return ChartStyle{}, fmt.Errorf("error parsing chart style file: %w", err)
	}
	if err := style.validate(); err != nil {
		return ChartStyle{}, fmt.Errorf("invalid chart style %s: %w", path, err)
	}
	return style, nil
}

// validate rejects values that would produce a broken chart.
func (s ChartStyle) validate() error {
	colors := map[string]string{
		"background": s.Colors.Background,
		"grid":       s.Colors.Grid,
		"axis":       s.Colors.Axis,
		"line":       s.Colors.Line,
		"area":       s.Colors.Area,
		"point":      s.Colors.Point,
		"text":       s.Colors.Text,
		"title":      s.Colors.Title,
	}
	for name, value := range colors {
		if !isHexColor(value) {
			return fmt.Errorf("colors.%s must be a hex color like #6BC04A (got %q)", name, value)
		}
	}
	if s.Line.Width <= 0 {
		return fmt.Errorf("line.width must be positive")
	}
	if s.Labels.MaxXLabels < 0 {
		return fmt.Errorf("labels.max_x_labels cannot be negative")
	}
	if s.Image.Width <= 0 || s.Image.Height <= 0 {
		return fmt.Errorf("image.width and image.height must be positive")
	}
	return nil
}

// isHexColor accepts #rgb and #rrggbb.
func isHexColor(s string) bool {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 3 && len(hex) != 6) {
		return false
	}
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

// drawingColor converts a validated hex color for the PNG renderer.
func drawingColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
