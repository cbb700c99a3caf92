// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cpu

import (
	"github.com/gomlx/denoise/internal/filters"
	"github.com/gomlx/denoise/internal/kernels"
	"github.com/gomlx/denoise/pkg/core"
)

// filter implements core.FilterImpl with the host kernels, tiled over the worker pool.
type filter struct {
	engine     *Engine
	filterType string
	schema     *core.FilterSchema
	config     *filters.Config
}

func (f *filter) Schema() *core.FilterSchema { return f.schema }

func (f *filter) Commit(state *core.FilterState) error {
	config, err := filters.NewConfig(f.filterType, state)
	if err != nil {
		return err
	}
	f.config = config
	return nil
}

// Execute captures the image views now: the images may be replaced before async work runs.
func (f *filter) Execute(progress *core.Progress, sync core.SyncMode) error {
	config := f.config
	color, output := kernels.ViewOf(config.Color), kernels.ViewOf(config.Output)
	return f.engine.run(sync, f.filterType+" filter", func() error {
		return f.engine.denoise(config, color, output, progress)
	})
}

func (f *filter) Free() {
	f.config = nil
}

// denoise runs the filter on the worker pool, one task per tile of rows.
func (e *Engine) denoise(config *filters.Config, color, output kernels.View, progress *core.Progress) error {
	numTiles := config.NumTiles()
	progress.SetTotal(numTiles)
	if err := progress.Start(); err != nil {
		return err
	}
	src := color
	if config.InPlace {
		src = kernels.NewScratch(color.ImageDesc)
		err := e.pool.ParallelFor(numTiles, func(tile int) error {
			y0, y1 := kernels.TileBounds(tile, color.Height)
			kernels.CopyRows(src, color, y0, y1)
			return nil
		})
		if err != nil {
			return err
		}
	}
	var autoScale float32 = 1
	if config.AutoInputScale() {
		autoScale = kernels.AutoExposure(src)
	}
	params := config.Params(autoScale)
	err := e.pool.ParallelFor(numTiles, func(tile int) error {
		y0, y1 := kernels.TileBounds(tile, src.Height)
		kernels.DenoiseRows(output, src, params, y0, y1)
		return progress.Update(1)
	})
	if err != nil {
		return err
	}
	return progress.Finish()
}
