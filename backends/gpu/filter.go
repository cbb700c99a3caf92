// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package gpu

import (
	"github.com/gomlx/denoise/internal/filters"
	"github.com/gomlx/denoise/internal/kernels"
	"github.com/gomlx/denoise/pkg/core"
	"github.com/pkg/errors"
)

// filter implements core.FilterImpl by enqueuing kernels on the engine streams.
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

func (f *filter) Free() {
	f.config = nil
}

// Execute enqueues the kernels, tiles spread over the engine streams.
//
// Synchronous execution waits for each tile before reporting progress, so a cancellation stops
// enqueuing work. Asynchronous execution reports progress from stream host functions.
func (f *filter) Execute(progress *core.Progress, sync core.SyncMode) error {
	e := f.engine
	config := f.config
	color, output := kernels.ViewOf(config.Color), kernels.ViewOf(config.Output)
	numTiles := config.NumTiles()
	progress.SetTotal(numTiles)
	if err := progress.Start(); err != nil {
		return err
	}

	primary := e.primary()
	src := color
	if config.InPlace {
		src = kernels.NewScratch(color.ImageDesc)
		if err := primary.Copy(src, color); err != nil {
			return err
		}
		e.markDirty(0)
	}
	var scale *float32
	if config.AutoInputScale() {
		scale = new(float32)
		if err := primary.AutoExposure(src, scale); err != nil {
			return err
		}
		e.markDirty(0)
	}
	params := config.Params(1)

	if err := e.fork(); err != nil {
		return err
	}
	for tile := range numTiles {
		i := tile % len(e.streams)
		stream := e.streams[i]
		y0, y1 := kernels.TileBounds(tile, src.Height)
		if err := stream.Denoise(output, src, params, scale, y0, y1); err != nil {
			return err
		}
		e.markDirty(i)
		if sync == core.SyncModeSync {
			if err := stream.Synchronize(); err != nil {
				return err
			}
			if err := progress.Update(1); err != nil {
				return err
			}
			continue
		}
		if err := stream.HostFunc(func() error { return progress.Update(1) }); err != nil {
			return err
		}
	}
	if err := e.barrier(); err != nil {
		return err
	}
	if sync == core.SyncModeAsync {
		return primary.HostFunc(progress.Finish)
	}
	if err := primary.Synchronize(); err != nil {
		return errors.WithMessagef(err, "%s filter execution failed", f.filterType)
	}
	return progress.Finish()
}
