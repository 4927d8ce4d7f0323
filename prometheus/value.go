// Copyright 2014 The Prometheus Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package prometheus

import (
	"math"
	"sync/atomic"
)

// atomicUpdateFloat atomically replaces the float64 stored as bits in *bits
// with updateFunc applied to it.
func atomicUpdateFloat(bits *uint64, updateFunc func(float64) float64) {
	for {
		loadedBits := atomic.LoadUint64(bits)
		newBits := math.Float64bits(updateFunc(math.Float64frombits(loadedBits)))
		if atomic.CompareAndSwapUint64(bits, loadedBits, newBits) {
			return
		}
	}
}

func atomicLoadFloat(bits *uint64) float64 {
	return math.Float64frombits(atomic.LoadUint64(bits))
}

func atomicStoreFloat(bits *uint64, v float64) {
	atomic.StoreUint64(bits, math.Float64bits(v))
}
