package scatterkit

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Margin is the pixel inset between the viewport edge and the plot area.
type Margin struct {
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
}

// ZoomExtent bounds the view scale factor.
type ZoomExtent struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Options configures an Engine. Zero values are replaced with defaults by
// New and LoadOptions.
type Options struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Margin Margin `yaml:"margin"`

	// PointSize is the marker diameter in pixels at any zoom level.
	PointSize float64 `yaml:"point_size"`

	ZoomExtent ZoomExtent `yaml:"zoom_extent"`

	BaseOpacity     float64 `yaml:"base_opacity"`
	SelectedOpacity float64 `yaml:"selected_opacity"`
	FadedOpacity    float64 `yaml:"faded_opacity"`

	// PaddingFrac is the fraction of each axis span added symmetrically
	// around the data extent when fitting scales.
	PaddingFrac float64 `yaml:"padding_frac"`

	// EnableDuplicateStackUI turns on grouping of points whose rendered
	// positions coincide within StackEpsilonPx.
	EnableDuplicateStackUI bool    `yaml:"enable_duplicate_stack_ui"`
	StackEpsilonPx         float64 `yaml:"stack_epsilon_px"`
	// StackBadgeMinZoom is the zoom factor above which stacks render a
	// member-count badge next to the marker.
	StackBadgeMinZoom float64 `yaml:"stack_badge_min_zoom"`

	// HitRadiusPx is the base pointer hit radius; the marker's own radius
	// is added on top.
	HitRadiusPx float64 `yaml:"hit_radius_px"`

	// UseCanvas forces the software raster backend even when the GPU
	// backend is available.
	UseCanvas bool `yaml:"use_canvas"`
	// UseShapes draws per-category marker symbols instead of circles only.
	UseShapes bool `yaml:"use_shapes"`

	SelectionMode SelectionMode `yaml:"selection_mode"`
}

// DefaultOptions returns the options used when a field is left at its zero
// value.
func DefaultOptions() Options {
	return Options{
		Width:  800,
		Height: 600,
		Margin: Margin{Top: 10, Right: 10, Bottom: 10, Left: 10},

		PointSize:  6,
		ZoomExtent: ZoomExtent{Min: 0.5, Max: 200},

		BaseOpacity:     0.8,
		SelectedOpacity: 1.0,
		FadedOpacity:    0.15,

		PaddingFrac: 0.05,

		StackEpsilonPx:    1.0,
		StackBadgeMinZoom: 4.0,

		HitRadiusPx: 4,
	}
}

// LoadOptions reads options from a YAML file. Missing fields fall back to
// DefaultOptions; a missing file is not an error and yields the defaults.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultOptions(), nil
	}

	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parse options %s: %w", path, err)
	}
	opts.applyDefaults()
	if err := opts.validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// applyDefaults fills zero-valued fields from DefaultOptions.
func (o *Options) applyDefaults() {
	def := DefaultOptions()
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	if o.PointSize <= 0 {
		o.PointSize = def.PointSize
	}
	if o.ZoomExtent.Min <= 0 {
		o.ZoomExtent.Min = def.ZoomExtent.Min
	}
	if o.ZoomExtent.Max <= 0 {
		o.ZoomExtent.Max = def.ZoomExtent.Max
	}
	// Zero means "use the default"; negative values are left for validate
	// to reject.
	if o.BaseOpacity == 0 {
		o.BaseOpacity = def.BaseOpacity
	}
	if o.SelectedOpacity == 0 {
		o.SelectedOpacity = def.SelectedOpacity
	}
	if o.FadedOpacity == 0 {
		o.FadedOpacity = def.FadedOpacity
	}
	if o.PaddingFrac <= 0 {
		o.PaddingFrac = def.PaddingFrac
	}
	if o.StackEpsilonPx <= 0 {
		o.StackEpsilonPx = def.StackEpsilonPx
	}
	if o.StackBadgeMinZoom <= 0 {
		o.StackBadgeMinZoom = def.StackBadgeMinZoom
	}
	if o.HitRadiusPx <= 0 {
		o.HitRadiusPx = def.HitRadiusPx
	}
}

// validate rejects option combinations the engine cannot honor.
func (o *Options) validate() error {
	if o.ZoomExtent.Min > o.ZoomExtent.Max {
		return fmt.Errorf("zoom extent min %g exceeds max %g", o.ZoomExtent.Min, o.ZoomExtent.Max)
	}
	for _, v := range []float64{o.BaseOpacity, o.SelectedOpacity, o.FadedOpacity} {
		if v <= 0 || v > 1 {
			return fmt.Errorf("opacities must lie in (0, 1]")
		}
	}
	return nil
}
