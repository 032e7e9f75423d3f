/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package hack holds unsafe pointer/slice-header conversion helpers.
// Package bench uses them to view arena memory handed out by package heap
// as a []byte and to recover the pointer from such a slice on free.
package hack

import "unsafe"

type sliceHeader struct {
	Data unsafe.Pointer
	Len  int
	Cap  int
}

// DataPtr returns the base pointer of b, including for a zero-length
// slice with a non-nil backing array (cap(b) > 0, len(b) == 0), where
// &b[0] would panic.
func DataPtr(b []byte) unsafe.Pointer {
	return (*sliceHeader)(unsafe.Pointer(&b)).Data
}

// MakeSlice builds a []byte backed by data, with the given len and cap,
// bypassing the bounds checks unsafe.Slice performs against Go-managed
// allocations. data points into an arena owned by sbrkheap, not the Go
// heap, so those checks do not apply.
func MakeSlice(data unsafe.Pointer, length, capacity int) []byte {
	var b []byte
	h := (*sliceHeader)(unsafe.Pointer(&b))
	h.Data = data
	h.Len = length
	h.Cap = capacity
	return b
}
