// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package filters

import (
	"maps"
	"math"
	"testing"

	"github.com/gomlx/denoise/pkg/core"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImage(height int) *core.Image {
	return must.M1(core.NewImage(make([]byte, 4*height*12), core.FormatFloat3, 4, height, 0, 0, 0))
}

// newState returns the state of a filter with default parameters and the given images.
func newState(t *testing.T, filterType string, images map[string]*core.Image) *core.FilterState {
	schema, err := Schema(filterType)
	require.NoError(t, err)
	return &core.FilterState{
		Images: images,
		Data:   map[string]core.Data{},
		Ints:   maps.Clone(schema.Ints),
		Floats: maps.Clone(schema.Floats),
	}
}

func TestSchema(t *testing.T) {
	rt := must.M1(Schema(TypeRT))
	assert.Len(t, rt.Images, 4)
	assert.Equal(t, -1, rt.Ints["maxMemoryMB"])
	assert.True(t, math.IsNaN(float64(rt.Floats["inputScale"])))

	lightmap := must.M1(Schema(TypeRTLightmap))
	assert.Len(t, lightmap.Images, 2)
	_, found := lightmap.Ints["directional"]
	assert.True(t, found)

	_, err := Schema("UNet")
	assert.True(t, core.IsCode(err, core.ErrorInvalidArgument))
}

func TestNewConfig(t *testing.T) {
	color, output := newImage(70), newImage(70)
	state := newState(t, TypeRT, map[string]*core.Image{"color": color, "output": output})
	c, err := NewConfig(TypeRT, state)
	require.NoError(t, err)
	assert.Equal(t, 3, c.NumTiles())
	assert.False(t, c.InPlace)
	assert.False(t, c.AutoInputScale(), "LDR images are not scaled")
	assert.Equal(t, float32(1), c.Params(4).InputScale)

	state.Ints["hdr"] = 1
	c = must.M1(NewConfig(TypeRT, state))
	assert.True(t, c.AutoInputScale())
	assert.Equal(t, float32(4), c.Params(4).InputScale)
	state.Floats["inputScale"] = 2
	c = must.M1(NewConfig(TypeRT, state))
	assert.False(t, c.AutoInputScale())
	assert.Equal(t, float32(2), c.Params(4).InputScale)

	for name, modify := range map[string]func(s *core.FilterState){
		"hdr and srgb":   func(s *core.FilterState) { s.Ints["hdr"], s.Ints["srgb"] = 1, 1 },
		"quality":        func(s *core.FilterState) { s.Ints["quality"] = 3 },
		"weights":        func(s *core.FilterState) { s.Data["weights"] = make(core.Data, 6) },
		"negative scale": func(s *core.FilterState) { s.Floats["inputScale"] = -1 },
	} {
		state := newState(t, TypeRT, map[string]*core.Image{"color": color, "output": output})
		modify(state)
		_, err := NewConfig(TypeRT, state)
		assert.True(t, core.IsCode(err, core.ErrorInvalidArgument), "%s: got %v", name, err)
	}

	state = newState(t, TypeRT, map[string]*core.Image{"color": color, "normal": newImage(70), "output": output})
	_, err = NewConfig(TypeRT, state)
	assert.True(t, core.IsCode(err, core.ErrorInvalidOperation))

	state = newState(t, TypeRT, map[string]*core.Image{"color": color, "output": output})
	state.Ints["quality"] = QualityHigh
	state.Data["weights"] = make(core.Data, 8)
	c = must.M1(NewConfig(TypeRT, state))
	assert.Equal(t, QualityHigh, c.Quality)
	assert.Len(t, c.Weights, 8)
}

func TestLightmap(t *testing.T) {
	state := newState(t, TypeRTLightmap, map[string]*core.Image{"color": newImage(8), "output": newImage(8)})
	c := must.M1(NewConfig(TypeRTLightmap, state))
	assert.True(t, c.HDR, "lightmaps are always HDR")
	assert.True(t, c.AutoInputScale())

	state.Ints["directional"] = 1
	c = must.M1(NewConfig(TypeRTLightmap, state))
	assert.False(t, c.AutoInputScale(), "directional lightmaps are not scaled")
	assert.Equal(t, float32(1), c.Params(8).InputScale)
}
