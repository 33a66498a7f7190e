/*
Package operation implements the user facing actions of gitopssettings.

	      +-------------+
	      |  Operation  |
	      |  (Actions)  |
	      +------+------+
	             |
	   +---------+---------+
	   |         |         |
	+--+--+ +----+----+ +--+--+
	| Git | |Warehouse| | UI  |
	+-----+ +---------+ +-----+

🎯 Purpose:
- Decides when copying configuration is safe
- Talks to git through a narrow interface, never directly
- Turns git failures into notifications

🔄 Flow (ImportData):
1. Compare current with the last import, confirm overwriting local changes
2. Find the repository, fetch, refuse a dirty working tree
3. Fast forward, refuse when still behind
4. Import the storage directory, or only refresh the snapshot when current already matches
5. Notify, reminding about unpublished commits

⚡ Background runs:
An Operator built with CalledByUser false stays quiet about git failures
when base.silent_git_failures is set, and the shared Notifier drops a
message identical to the previous one.

🔍 Example:

	op, err := operation.New(operation.Options{
		CalledByUser: true,
		Config:       cfg,
		Warehouse:    wh,
		Git:          func() operation.Git { return git.New(fs, runner) },
		UI:           ui,
		Store:        store,
		Open:         open,
		Notifier:     notifier,
	})
	if err != nil {
		return err
	}
	return op.ImportData(ctx)
*/
package operation
