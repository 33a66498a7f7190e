// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package warehouse

import (
	"strings"
)

// 📍 Kind is the role a configuration location plays
type Kind int

const (
	// KindCurrent is the live configuration of this machine
	KindCurrent Kind = iota
	// KindLastImported is the snapshot taken after the last successful import
	KindLastImported
	// KindStored is the copy in the version controlled storage directory
	KindStored
)

func (k Kind) String() string {
	switch k {
	case KindCurrent:
		return "current"
	case KindLastImported:
		return "lastImported"
	case KindStored:
		return "stored"
	default:
		return "unknown"
	}
}

// 🗺️ KindMap holds one value per location kind
type KindMap[T any] struct {
	Current      T
	LastImported T
	Stored       T
}

// Get returns the value for kind
func (m KindMap[T]) Get(kind Kind) T {
	switch kind {
	case KindLastImported:
		return m.LastImported
	case KindStored:
		return m.Stored
	default:
		return m.Current
	}
}

// 🧩 PartialSum is the digest of one category. Value is empty when the
// category has no data at the location.
type PartialSum struct {
	Key   string
	Value string
}

// Equals compares key and value
func (p PartialSum) Equals(other PartialSum) bool {
	return p.Key == other.Key && p.Value == other.Value
}

// 🧮 Sum is the ordered list of partial sums of every active category
type Sum []PartialSum

// Equals compares position by position. Both sums must come from the same
// warehouse for the comparison to be meaningful.
func (s Sum) Equals(other Sum) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if !s[i].Equals(other[i]) {
			return false
		}
	}
	return true
}

// Differs lists the keys of categories whose digests differ
func (s Sum) Differs(other Sum) []string {
	var keys []string
	for i := range s {
		if i >= len(other) || !s[i].Equals(other[i]) {
			keys = append(keys, s[i].Key)
		}
	}
	return keys
}

func (s Sum) String() string {
	parts := make([]string, 0, len(s))
	for _, p := range s {
		v := p.Value
		if len(v) > 12 {
			v = v[:12]
		}
		if v == "" {
			v = "-"
		}
		parts = append(parts, p.Key+"="+v)
	}
	return strings.Join(parts, " ")
}
