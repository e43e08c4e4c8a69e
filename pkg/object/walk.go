package object

import (
	"context"
	"errors"
	"fmt"
)

// Visitor is called once for every commit reached by a walk.
type Visitor func(*Object) error

// WalkLog visits the commits reachable from start through parent links.
//
// The frontier is a stack: parents are pushed in header order, so the last
// parent of a merge is followed first. Every commit is visited at most
// once, which also bounds walks over cyclic (corrupt) histories. Reaching a
// non-commit object aborts the walk with ErrNotACommit. A visitor error
// aborts the walk and is returned wrapped, except ErrStopWalk, which ends
// the walk with a nil error.
func (db *Database) WalkLog(start Hash, visit Visitor) error {
	visited := make(map[Hash]struct{})
	stack := []Hash{start}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[h]; ok {
			continue
		}

		obj, err := db.ReadObject(h)
		if err != nil {
			return fmt.Errorf("walk log: %w", err)
		}
		c, ok := obj.Payload.(*Commit)
		if !ok {
			return fmt.Errorf("walk log: %w: %s is a %s", ErrNotACommit, h, obj.Type())
		}
		stack = append(stack, c.Parents...)

		if err := visit(obj); err != nil {
			if errors.Is(err, ErrStopWalk) {
				return nil
			}
			return fmt.Errorf("visit commit %s: %w", h, err)
		}
		visited[h] = struct{}{}
		db.log.WithField("oid", h).WithField("pending", len(stack)).Debug("walk log: visited commit")
	}
	return nil
}

// Log walks like WalkLog but sends every commit on out. With limit > 0 the
// walk stops once limit commits have been sent, before any further object
// is read. It returns when the walk is complete, fails, or ctx is done. out
// is never closed.
func (db *Database) Log(ctx context.Context, start Hash, limit int, out chan<- *Object) error {
	sent := 0
	return db.WalkLog(start, func(obj *Object) error {
		select {
		case out <- obj:
		case <-ctx.Done():
			return ctx.Err()
		}
		sent++
		if limit > 0 && sent == limit {
			return ErrStopWalk
		}
		return nil
	})
}
