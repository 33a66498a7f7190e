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

package operation

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/gitopssettings/pkg/warehouse"
	"golang.org/x/sync/errgroup"
)

// 📊 Status holds the sums of every location kind. Stored is nil when no
// storage directory is set.
type Status struct {
	StorageDirectory string
	Current          warehouse.Sum
	LastImported     warehouse.Sum
	Stored           warehouse.Sum
}

// 🔍 Comparison is one category compared across two location kinds
type Comparison struct {
	Key   string
	Equal bool
}

// Compare lists every category of a with whether b agrees on it
func Compare(a, b warehouse.Sum) []Comparison {
	out := make([]Comparison, 0, len(a))
	for i, p := range a {
		out = append(out, Comparison{Key: p.Key, Equal: i < len(b) && p.Equals(b[i])})
	}
	return out
}

// HasLocalChanges reports whether current moved away from the last import
func (s *Status) HasLocalChanges() bool {
	return !s.Current.Equals(s.LastImported)
}

// HasStoredChanges reports whether the storage directory moved away from the last import
func (s *Status) HasStoredChanges() bool {
	return s.Stored != nil && !s.Stored.Equals(s.LastImported)
}

// 🔍 Status computes the sums of every location kind. It is a local
// operation: the repository is neither fetched nor inspected.
func (o *Operator) Status(ctx context.Context) (*Status, error) {
	logger := zerolog.Ctx(ctx)

	storage, err := o.storageDirectory(ctx)
	if err != nil {
		return nil, err
	}

	st := &Status{StorageDirectory: storage}
	var g errgroup.Group
	g.Go(func() (err error) {
		st.Current, err = o.data.SumOfCurrent(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.LastImported, err = o.data.SumOfLastImported(ctx)
		return err
	})
	if storage != "" {
		g.Go(func() (err error) {
			st.Stored, err = o.data.SumOfStored(ctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug().
		Stringer("current", st.Current).
		Stringer("last_imported", st.LastImported).
		Stringer("stored", st.Stored).
		Msg("computed status")

	return st, nil
}
