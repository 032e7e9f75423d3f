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

package ring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

type ringItem struct {
	value int
}

func newRandomValue(n int) []int {
	vs := make([]int, 0, n)
	for i := 0; i < n; i++ {
		vs = append(vs, rand.Intn(n))
	}
	return vs
}

func newRingItemSlice(vs []int) []ringItem {
	items := make([]ringItem, 0, len(vs))
	for i := 0; i < len(vs); i++ {
		items = append(items, ringItem{value: vs[i]})
	}
	return items
}

func TestRing(t *testing.T) {
	n := 100
	vs := newRandomValue(n)

	r := NewFromSlice(newRingItemSlice(vs))
	assert.Equal(t, n, r.Len())

	for i := 0; i < n; i++ {
		it, ok := r.Get(i)
		assert.True(t, ok)
		assert.Equal(t, vs[i], it.Value().value)
		assert.Equal(t, vs[i], it.Pointer().value)
		assert.Equal(t, i, it.Index())
	}
	_, ok := r.Get(n + 1)
	assert.False(t, ok)
	_, ok = r.Get(-1)
	assert.False(t, ok)

	var (
		expectedTotal int
		actualTotal   int
	)
	r.Do(func(v *ringItem) {
		actualTotal += v.value
	})
	for i := 0; i < n; i++ {
		expectedTotal += vs[i]
	}
	assert.Equal(t, expectedTotal, actualTotal)

	for i := 0; i < n; i++ {
		it, ok := r.Get(i)
		assert.True(t, ok)
		newValue := i
		it.Pointer().value = newValue
		assert.Equal(t, newValue, it.Value().value)
	}
}
