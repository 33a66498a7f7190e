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

package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/walteh/gitopssettings/cmd/gitopssettings/opts"
	"github.com/walteh/gitopssettings/pkg/log"
	"github.com/walteh/gitopssettings/pkg/operation"
	"github.com/walteh/gitopssettings/pkg/warehouse"
	"gitlab.com/tozd/go/errors"
)

// NewStatusCmd creates the status command
func NewStatusCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which categories changed since the last import",
		Long: `Status compares the current configuration and the storage directory with
the last imported configuration, category by category. The repository is
neither fetched nor inspected.`,
		Args: cobra.NoArgs,
		RunE: runE(o, "status", "Comparing configuration", func(ctx context.Context, op *operation.Operator) error {
			st, err := op.Status(ctx)
			if err != nil {
				return errors.Errorf("computing status: %w", err)
			}

			if st.StorageDirectory == "" {
				o.Console.Warning("Storage directory is not set.")
			} else {
				o.Console.Infof("Storage directory: %s", st.StorageDirectory)
			}

			var stored, matching []operation.Comparison
			if st.Stored != nil {
				stored = operation.Compare(st.Stored, st.LastImported)
				matching = operation.Compare(st.Current, st.Stored)
			}
			for i, local := range operation.Compare(st.Current, st.LastImported) {
				storedChanged := i < len(stored) && !stored[i].Equal
				same := i < len(matching) && matching[i].Equal
				o.Console.LogCategory(ctx, categoryStatus(local.Key, !local.Equal, storedChanged, same))
			}
			summarize(o.Console, st)
			return nil
		}),
	}
}

// summarize prints one line per side that moved away from the last import
func summarize(console *log.Logger, st *operation.Status) {
	console.LogNewline()
	if !st.HasLocalChanges() && !st.HasStoredChanges() {
		console.Successf("All %d categories match the last import.", len(st.Current))
		return
	}
	if st.HasLocalChanges() {
		console.Warningf("%d of %d categories changed locally.", changed(st.Current, st.LastImported), len(st.Current))
	}
	if st.HasStoredChanges() {
		console.Warningf("%d of %d categories changed in storage.", changed(st.Stored, st.LastImported), len(st.Stored))
	}
}

func changed(a, b warehouse.Sum) int {
	n := 0
	for _, c := range operation.Compare(a, b) {
		if !c.Equal {
			n++
		}
	}
	return n
}

// categoryStatus describes one category. local and stored tell whether each
// side moved away from the last import, same whether they now agree.
func categoryStatus(key string, local, stored, same bool) log.CategoryOperation {
	op := log.CategoryOperation{Key: key}
	switch {
	case local && stored && same:
		op.Status = "matches storage"
		op.IsSynced = true
	case local && stored:
		op.Status = "diverged"
		op.IsFailed = true
	case local:
		op.Status = "changed locally"
		op.IsSkipped = true
	case stored:
		op.Status = "changed in storage"
		op.IsSkipped = true
	default:
		op.Status = "in sync"
		op.IsSynced = true
	}
	return op
}
