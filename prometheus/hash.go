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

import "github.com/cespare/xxhash/v2"

// separatorByte cannot occur in valid UTF-8, so it keeps ("a", "bc") and
// ("ab", "c") apart.
const separatorByte byte = 255

var separator = []byte{separatorByte}

// hashLabelValues returns the key under which a series with the given label
// values is filed. Equal hashes do not imply equal values.
func hashLabelValues(vs []string) uint64 {
	h := xxhash.New()
	for _, v := range vs {
		_, _ = h.WriteString(v)
		_, _ = h.Write(separator)
	}
	return h.Sum64()
}
