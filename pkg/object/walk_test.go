package object_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/odvcencio/gitinspect/pkg/object"
	"github.com/odvcencio/gitinspect/pkg/object/objecttest"
)

func collectWalk(t *testing.T, db *object.Database, start object.Hash) ([]object.Hash, error) {
	t.Helper()
	var got []object.Hash
	err := db.WalkLog(start, func(obj *object.Object) error {
		got = append(got, obj.Hash)
		return nil
	})
	return got, err
}

func TestWalkLogLinear(t *testing.T) {
	s := objecttest.NewStore(t)
	tree := s.WritePayload(&object.Tree{})
	c1 := s.WriteCommit(tree, "one\n")
	c2 := s.WriteCommit(tree, "two\n", c1)
	c3 := s.WriteCommit(tree, "three\n", c2)

	got, err := collectWalk(t, s.Database(), c3)
	if err != nil {
		t.Fatalf("WalkLog: %v", err)
	}
	if diff := cmp.Diff([]object.Hash{c3, c2, c1}, got); diff != "" {
		t.Fatalf("visit order (-want +got):\n%s", diff)
	}
}

func TestWalkLogMergeOrder(t *testing.T) {
	// root <- left  <- merge
	// root <- right <-/
	s := objecttest.NewStore(t)
	tree := s.WritePayload(&object.Tree{})
	root := s.WriteCommit(tree, "root\n")
	left := s.WriteCommit(tree, "left\n", root)
	right := s.WriteCommit(tree, "right\n", root)
	merge := s.WriteCommit(tree, "merge\n", left, right)

	got, err := collectWalk(t, s.Database(), merge)
	if err != nil {
		t.Fatalf("WalkLog: %v", err)
	}
	// Last parent first, shared ancestor once.
	want := []object.Hash{merge, right, root, left}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("visit order (-want +got):\n%s", diff)
	}
}

// writeCommitAt stores a commit under a chosen name so that parent links
// can form a cycle.
func writeCommitAt(t *testing.T, s *objecttest.Store, h object.Hash, tree object.Hash, parents ...object.Hash) {
	t.Helper()
	data, err := object.Marshal(objecttest.NewCommit(tree, "cycle\n", parents...))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s.WriteRaw(h, object.Envelope(object.TypeCommit, data))
}

func TestWalkLogCycle(t *testing.T) {
	s := objecttest.NewStore(t)
	tree := s.WritePayload(&object.Tree{})
	a := object.Hash(strings.Repeat("a", 40))
	b := object.Hash(strings.Repeat("b", 40))
	self := object.Hash(strings.Repeat("c", 40))
	writeCommitAt(t, s, a, tree, b)
	writeCommitAt(t, s, b, tree, a)
	writeCommitAt(t, s, self, tree, self)
	db := s.Database()

	got, err := collectWalk(t, db, a)
	if err != nil {
		t.Fatalf("WalkLog: %v", err)
	}
	if diff := cmp.Diff([]object.Hash{a, b}, got); diff != "" {
		t.Fatalf("visit order (-want +got):\n%s", diff)
	}

	got, err = collectWalk(t, db, self)
	if err != nil {
		t.Fatalf("WalkLog: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("self-parent visited %d times, want 1", len(got))
	}
}

func TestWalkLogNotACommit(t *testing.T) {
	s := objecttest.NewStore(t)
	blob := s.WriteBlob("not a commit")

	got, err := collectWalk(t, s.Database(), blob)
	if !errors.Is(err, object.ErrNotACommit) {
		t.Fatalf("err = %v, want ErrNotACommit", err)
	}
	if len(got) != 0 {
		t.Fatalf("visitor called %d times, want 0", len(got))
	}
}

func TestWalkLogParentIsNotACommit(t *testing.T) {
	s := objecttest.NewStore(t)
	tree := s.WritePayload(&object.Tree{})
	blob := s.WriteBlob("oops")
	head := s.WriteCommit(tree, "bad parent\n", blob)

	got, err := collectWalk(t, s.Database(), head)
	if !errors.Is(err, object.ErrNotACommit) {
		t.Fatalf("err = %v, want ErrNotACommit", err)
	}
	if diff := cmp.Diff([]object.Hash{head}, got); diff != "" {
		t.Fatalf("visits before failure (-want +got):\n%s", diff)
	}
}

func TestWalkLogMissingParent(t *testing.T) {
	s := objecttest.NewStore(t)
	tree := s.WritePayload(&object.Tree{})
	head := s.WriteCommit(tree, "dangling\n", object.Hash(strings.Repeat("e", 40)))

	_, err := collectWalk(t, s.Database(), head)
	if !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestWalkLogVisitorError(t *testing.T) {
	s := objecttest.NewStore(t)
	tree := s.WritePayload(&object.Tree{})
	c1 := s.WriteCommit(tree, "one\n")
	c2 := s.WriteCommit(tree, "two\n", c1)

	boom := errors.New("boom")
	calls := 0
	err := s.Database().WalkLog(c2, func(*object.Object) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if !strings.Contains(err.Error(), string(c2)) {
		t.Errorf("err = %v, want visited hash in context", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestWalkLogStop(t *testing.T) {
	s := objecttest.NewStore(t)
	tree := s.WritePayload(&object.Tree{})
	c1 := s.WriteCommit(tree, "one\n")
	c2 := s.WriteCommit(tree, "two\n", c1)
	c3 := s.WriteCommit(tree, "three\n", c2)

	var got []object.Hash
	err := s.Database().WalkLog(c3, func(obj *object.Object) error {
		got = append(got, obj.Hash)
		if len(got) == 2 {
			return object.ErrStopWalk
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WalkLog: %v", err)
	}
	if diff := cmp.Diff([]object.Hash{c3, c2}, got); diff != "" {
		t.Fatalf("visits (-want +got):\n%s", diff)
	}
}

func TestLogStream(t *testing.T) {
	s := objecttest.NewStore(t)
	tree := s.WritePayload(&object.Tree{})
	c1 := s.WriteCommit(tree, "one\n")
	c2 := s.WriteCommit(tree, "two\n", c1)
	db := s.Database()

	out := make(chan *object.Object)
	errc := make(chan error, 1)
	go func() {
		errc <- db.Log(context.Background(), c2, 0, out)
		close(out)
	}()

	var got []object.Hash
	for obj := range out {
		got = append(got, obj.Hash)
	}
	if err := <-errc; err != nil {
		t.Fatalf("Log: %v", err)
	}
	if diff := cmp.Diff([]object.Hash{c2, c1}, got); diff != "" {
		t.Fatalf("streamed commits (-want +got):\n%s", diff)
	}
}

func TestLogStreamCanceled(t *testing.T) {
	s := objecttest.NewStore(t)
	tree := s.WritePayload(&object.Tree{})
	c1 := s.WriteCommit(tree, "one\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Database().Log(ctx, c1, 0, make(chan *object.Object))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestLogStreamLimitStopsBeforeMissingParent(t *testing.T) {
	s := objecttest.NewStore(t)
	tree := s.WritePayload(&object.Tree{})
	head := s.WriteCommit(tree, "shallow\n", object.Hash(strings.Repeat("e", 40)))

	out := make(chan *object.Object, 1)
	if err := s.Database().Log(context.Background(), head, 1, out); err != nil {
		t.Fatalf("Log with limit 1: %v", err)
	}
	if obj := <-out; obj.Hash != head {
		t.Fatalf("streamed %s, want %s", obj.Hash, head)
	}

	err := s.Database().Log(context.Background(), head, 2, make(chan *object.Object, 2))
	if !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("Log with limit 2: err = %v, want ErrNotFound", err)
	}
}
