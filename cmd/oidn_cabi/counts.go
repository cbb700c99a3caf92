// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import "github.com/gomlx/denoise/pkg/core"

// checkCount validates the number of elements of a C array argument, named what. Negative
// counts are reported on the global error channel.
func checkCount(n int, what string) bool {
	if n < 0 {
		core.ReportError(nil, core.Errorf(core.ErrorInvalidArgument, "invalid number of %s", what))
		return false
	}
	return true
}
