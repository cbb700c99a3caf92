// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package core

import "sync"

// Object is the base of every reference-counted object exposed through handles.
type Object struct {
	RefCount

	muHooks   sync.Mutex
	onDestroy []func()
}

// OnDestroy registers fn to be called when the object is destroyed.
// The handle API uses it to drop the handle of objects destroyed by internal references.
func (o *Object) OnDestroy(fn func()) {
	o.muHooks.Lock()
	defer o.muHooks.Unlock()
	o.onDestroy = append(o.onDestroy, fn)
}

func (o *Object) runDestroyHooks() {
	o.muHooks.Lock()
	hooks := o.onDestroy
	o.onDestroy = nil
	o.muHooks.Unlock()
	for _, fn := range hooks {
		fn()
	}
}
