package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.sqlite3"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveLoadRoundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "s1", []byte(`"blob-A"`), []string{"alice", "bob"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	snap, ok, err := s.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatalf("Load reported absent after Save")
	}
	if string(snap.State) != `"blob-A"` {
		t.Fatalf("state = %s", snap.State)
	}
	if !reflect.DeepEqual(snap.Participants, []string{"alice", "bob"}) {
		t.Fatalf("participants = %v", snap.Participants)
	}
}

func TestLoadAbsentSession(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.Load(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Fatalf("Load fabricated a snapshot")
	}
}

func TestSaveOverwritesPreviousSnapshot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "s1", []byte(`"blob-A"`), []string{"alice"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, "s1", []byte(`"blob-B"`), nil); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}

	snap, ok, err := s.Load(ctx, "s1")
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if string(snap.State) != `"blob-B"` {
		t.Fatalf("state = %s, want last write", snap.State)
	}
	if len(snap.Participants) != 0 {
		t.Fatalf("participants = %v, want empty", snap.Participants)
	}
}
