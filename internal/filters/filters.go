// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package filters declares the filter types shared by all engines ("RT" and "RTLightmap") and
// parses a committed core.FilterState into the Config the engines execute.
package filters

import (
	"math"

	"github.com/gomlx/denoise/internal/kernels"
	"github.com/gomlx/denoise/pkg/core"
)

// Filter types.
const (
	TypeRT         = "RT"
	TypeRTLightmap = "RTLightmap"
)

// Quality modes of the "quality" option.
const (
	QualityDefault  = 0
	QualityBalanced = 5
	QualityHigh     = 6
)

var colorFormats = []core.Format{
	core.FormatFloat3, core.FormatFloat4,
	core.FormatHalf3, core.FormatHalf4,
}

var nan = float32(math.NaN())

// Schema returns the declaration of the filter type, or an ErrorInvalidArgument for unknown types.
func Schema(filterType string) (*core.FilterSchema, error) {
	switch filterType {
	case TypeRT:
		return &core.FilterSchema{
			Images: []core.ImageSlot{
				{Name: "color", Required: true, Formats: colorFormats},
				{Name: "albedo", Formats: colorFormats},
				{Name: "normal", Formats: colorFormats},
				{Name: "output", Required: true, Output: true, Formats: colorFormats},
			},
			Ints: map[string]int{
				"hdr":         0,
				"srgb":        0,
				"cleanAux":    0,
				"maxMemoryMB": -1,
				"quality":     QualityDefault,
			},
			Floats:         map[string]float32{"inputScale": nan},
			Data:           []string{"weights"},
			AllowedAliases: [][2]string{{"output", "color"}},
		}, nil
	case TypeRTLightmap:
		return &core.FilterSchema{
			Images: []core.ImageSlot{
				{Name: "color", Required: true, Formats: colorFormats},
				{Name: "output", Required: true, Output: true, Formats: colorFormats},
			},
			Ints: map[string]int{
				"directional": 0,
				"maxMemoryMB": -1,
				"quality":     QualityDefault,
			},
			Floats:         map[string]float32{"inputScale": nan},
			Data:           []string{"weights"},
			AllowedAliases: [][2]string{{"output", "color"}},
		}, nil
	default:
		return nil, core.Errorf(core.ErrorInvalidArgument, "unknown filter type %q", filterType)
	}
}

// Config is a validated filter configuration.
type Config struct {
	Type string

	Color, Albedo, Normal, Output *core.Image

	HDR, SRGB, CleanAux, Directional bool
	Quality, MaxMemoryMB             int

	// InputScale is NaN for automatic (computed from the color image on each execution).
	InputScale float32

	Weights core.Data

	// InPlace is set when the output shares memory with the color input, including user memory:
	// engines first copy the input to scratch memory.
	InPlace bool
}

// NewConfig validates the filter specific constraints of state.
func NewConfig(filterType string, state *core.FilterState) (*Config, error) {
	c := &Config{
		Type:        filterType,
		Color:       state.Image("color"),
		Albedo:      state.Image("albedo"),
		Normal:      state.Image("normal"),
		Output:      state.Image("output"),
		HDR:         state.Ints["hdr"] != 0,
		SRGB:        state.Ints["srgb"] != 0,
		CleanAux:    state.Ints["cleanAux"] != 0,
		Directional: state.Ints["directional"] != 0,
		Quality:     state.Ints["quality"],
		MaxMemoryMB: state.Ints["maxMemoryMB"],
		InputScale:  state.Floats["inputScale"],
		Weights:     state.Data["weights"],
	}
	if filterType == TypeRTLightmap {
		c.HDR = true
	}
	if c.Normal != nil && c.Albedo == nil {
		return nil, core.Errorf(core.ErrorInvalidOperation, "the normal image requires the albedo image")
	}
	if c.HDR && c.SRGB {
		return nil, core.Errorf(core.ErrorInvalidArgument, "srgb and hdr modes cannot be enabled at the same time")
	}
	switch c.Quality {
	case QualityDefault, QualityBalanced, QualityHigh:
	default:
		return nil, core.Errorf(core.ErrorInvalidArgument, "invalid filter quality mode %d", c.Quality)
	}
	if len(c.Weights)%4 != 0 {
		return nil, core.Errorf(core.ErrorInvalidArgument, "invalid weights blob size %d, must be a multiple of 4", len(c.Weights))
	}
	if !math.IsNaN(float64(c.InputScale)) && c.InputScale <= 0 {
		return nil, core.Errorf(core.ErrorInvalidArgument, "invalid input scale %g", c.InputScale)
	}
	c.InPlace = c.Output.SharesMemory(c.Color)
	return c, nil
}

// NumTiles is the number of units of work of one execution, used for progress.
func (c *Config) NumTiles() int {
	return kernels.NumTiles(c.Color.Height)
}

// AutoInputScale returns whether the input scale is computed on each execution.
func (c *Config) AutoInputScale() bool {
	return math.IsNaN(float64(c.InputScale)) && c.HDR && !c.Directional
}

// Params returns the kernel parameters given the input scale computed for this execution
// (ignored unless AutoInputScale).
func (c *Config) Params(autoScale float32) kernels.Params {
	scale := c.InputScale
	if c.AutoInputScale() {
		scale = autoScale
	} else if math.IsNaN(float64(scale)) {
		scale = 1
	}
	return kernels.Params{HDR: c.HDR, SRGB: c.SRGB, InputScale: scale}
}
