package core

import (
	"reflect"
	"testing"
)

type fakeConn struct {
	frames []Frame
	fail   bool
}

func (f *fakeConn) TrySend(fr Frame) error {
	if f.fail {
		return ErrConnClosed
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func TestJoinPreservesOrderAndDuplicates(t *testing.T) {
	s := NewSessionService("s1")
	s.Join("alice")
	s.Join("bob")
	snap := s.Join("alice")

	if snap.Count != 3 {
		t.Fatalf("count = %d, want 3", snap.Count)
	}
	want := []string{"alice", "bob", "alice"}
	if !reflect.DeepEqual(snap.Users, want) {
		t.Fatalf("users = %v, want %v", snap.Users, want)
	}
}

func TestLeaveRemovesExactlyOneMatch(t *testing.T) {
	s := NewSessionService("s1")
	s.Join("alice")
	s.Join("bob")
	s.Join("alice")

	s.Leave("alice")

	snap := s.Presence()
	if snap.Count != 2 {
		t.Fatalf("count = %d, want 2", snap.Count)
	}
	want := []string{"bob", "alice"}
	if !reflect.DeepEqual(snap.Users, want) {
		t.Fatalf("users = %v, want %v", snap.Users, want)
	}
}

func TestLeaveAbsentIsNoOp(t *testing.T) {
	s := NewSessionService("s1")
	s.Join("alice")

	s.Leave("bob")

	if snap := s.Presence(); snap.Count != 1 {
		t.Fatalf("count = %d, want 1", snap.Count)
	}
}

func TestSessionMayReachZeroParticipants(t *testing.T) {
	s := NewSessionService("s1")
	s.Join("alice")
	s.Leave("alice")

	snap := s.Presence()
	if snap.Count != 0 || len(snap.Users) != 0 {
		t.Fatalf("snapshot = %+v, want empty", snap)
	}
}

func TestSetCanvasLastWriterWins(t *testing.T) {
	s := NewSessionService("s1")
	s.SetCanvas([]byte(`"blob-A"`))
	s.SetCanvas([]byte(`"blob-B"`))

	if got := string(s.Canvas()); got != `"blob-B"` {
		t.Fatalf("canvas = %s, want %q", got, `"blob-B"`)
	}
}

func TestBroadcastSkipsOrigin(t *testing.T) {
	s := NewSessionService("s1")
	a := &fakeConn{}
	b := &fakeConn{}
	s.Attach("conn-a", a)
	s.Attach("conn-b", b)

	res := s.Broadcast("conn-a", Frame("payload"))

	if res.SentTo != 1 {
		t.Fatalf("sent_to = %d, want 1", res.SentTo)
	}
	if len(a.frames) != 0 {
		t.Fatalf("origin received %d frames, want 0", len(a.frames))
	}
	if len(b.frames) != 1 || string(b.frames[0]) != "payload" {
		t.Fatalf("peer frames = %v", b.frames)
	}
}

func TestBroadcastEmptyOriginReachesEveryone(t *testing.T) {
	s := NewSessionService("s1")
	a := &fakeConn{}
	b := &fakeConn{}
	s.Attach("conn-a", a)
	s.Attach("conn-b", b)

	res := s.Broadcast("", Frame("x"))

	if res.SentTo != 2 {
		t.Fatalf("sent_to = %d, want 2", res.SentTo)
	}
	if len(a.frames) != 1 || len(b.frames) != 1 {
		t.Fatalf("frames a=%d b=%d, want 1 each", len(a.frames), len(b.frames))
	}
}

func TestBroadcastReportsDropped(t *testing.T) {
	s := NewSessionService("s1")
	slow := &fakeConn{fail: true}
	ok := &fakeConn{}
	s.Attach("conn-slow", slow)
	s.Attach("conn-ok", ok)

	res := s.Broadcast("", Frame("x"))

	if res.SentTo != 1 {
		t.Fatalf("sent_to = %d, want 1", res.SentTo)
	}
	if len(res.Dropped) != 1 || res.Dropped[0] != "conn-slow" {
		t.Fatalf("dropped = %v, want [conn-slow]", res.Dropped)
	}
}

func TestDetachStopsDelivery(t *testing.T) {
	s := NewSessionService("s1")
	a := &fakeConn{}
	s.Attach("conn-a", a)
	s.Detach("conn-a")

	res := s.Broadcast("", Frame("x"))

	if res.SentTo != 0 || len(a.frames) != 0 {
		t.Fatalf("detached conn still reached: %+v", res)
	}
	if s.ConnCount() != 0 {
		t.Fatalf("conn count = %d, want 0", s.ConnCount())
	}
}
