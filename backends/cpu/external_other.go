// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

//go:build !unix

package cpu

import (
	"github.com/gomlx/denoise/pkg/core"
)

const externalMemoryTypes = core.ExternalMemoryTypeFlagNone

func importExternal(core.ExternalMemoryDesc, int) ([]byte, func() error, error) {
	return nil, nil, core.Errorf(core.ErrorInvalidArgument, "external memory type not supported by the device")
}
