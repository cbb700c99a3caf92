// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package _default includes the default device types, namely CPU and the GPU ones (SYCL, CUDA
// and HIP, supported once their driver is registered).
//
// To use it simply include:
//
//	import _ "github.com/gomlx/denoise/backends/default"
package _default

import (
	_ "github.com/gomlx/denoise/backends/cpu"
	_ "github.com/gomlx/denoise/backends/gpu"
)
