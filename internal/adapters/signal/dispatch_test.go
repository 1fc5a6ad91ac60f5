package signal

import (
	"encoding/json"
	"testing"

	"github.com/okatev/whiteboard/internal/app"
	"github.com/okatev/whiteboard/internal/app/orch"
	"github.com/okatev/whiteboard/internal/core"
)

func newTestController() *SignalWSController {
	o := &orch.Orchestrator{
		Sessions: app.NewSessionRegistry(),
		Bindings: app.NewBindings(),
		Relay:    app.NewRelay(),
		Policy:   app.SimplePolicy{},
	}
	return NewSignalWSController(o, nil, nil)
}

func newTestConn() *WsSignalConn {
	return &WsSignalConn{send: make(chan core.Frame, 8)}
}

func drain(t *testing.T, c *WsSignalConn) []map[string]any {
	t.Helper()
	var out []map[string]any
	for {
		select {
		case f := <-c.send:
			var m map[string]any
			if err := json.Unmarshal(f, &m); err != nil {
				t.Fatalf("bad frame %s: %v", f, err)
			}
			out = append(out, m)
		default:
			return out
		}
	}
}

func TestMalformedJSONGetsErrorEvent(t *testing.T) {
	ctl := newTestController()
	conn := newTestConn()

	ctl.handleEvent("conn-a", conn, nil, "", []byte("{not json"))

	frames := drain(t, conn)
	if len(frames) != 1 || frames[0]["type"] != "error" {
		t.Fatalf("frames = %v, want one error", frames)
	}
}

func TestJoinWithoutSessionIDIsDropped(t *testing.T) {
	ctl := newTestController()
	conn := newTestConn()

	ctl.handleEvent("conn-a", conn, nil, "", []byte(`{"type":"join","username":"alice"}`))

	frames := drain(t, conn)
	if len(frames) != 1 || frames[0]["type"] != "error" {
		t.Fatalf("frames = %v, want one error", frames)
	}
	if len(ctl.Orch.Sessions.List()) != 0 {
		t.Fatalf("malformed join created a session")
	}
}

func TestJoinDeliversPresenceThenInitialState(t *testing.T) {
	ctl := newTestController()
	conn := newTestConn()

	ctl.handleEvent("conn-a", conn, nil, "", []byte(`{"type":"join","session_id":"S1","username":"alice"}`))

	frames := drain(t, conn)
	if len(frames) != 2 {
		t.Fatalf("frames = %v, want presence then initial state", frames)
	}
	if frames[0]["type"] != core.EventPresenceUpdate || frames[1]["type"] != core.EventInitialState {
		t.Fatalf("frame order = %v %v", frames[0]["type"], frames[1]["type"])
	}
	if frames[0]["count"].(float64) != 1 {
		t.Fatalf("presence count = %v", frames[0]["count"])
	}
}

func TestJoinFallsBackToVerifiedName(t *testing.T) {
	ctl := newTestController()
	conn := newTestConn()

	ctl.handleEvent("conn-a", conn, nil, "alice", []byte(`{"type":"join","session_id":"S1"}`))

	sess, ok := ctl.Orch.Sessions.Get("S1")
	if !ok {
		t.Fatalf("session not created")
	}
	snap := sess.Presence()
	if snap.Count != 1 || snap.Users[0] != "alice" {
		t.Fatalf("presence = %+v", snap)
	}
}

func TestUpdateBeforeJoinIsSilentlyIgnored(t *testing.T) {
	ctl := newTestController()
	conn := newTestConn()

	ctl.handleEvent("conn-a", conn, nil, "", []byte(`{"type":"update","session_id":"S1","data":"\"blob\""}`))

	if frames := drain(t, conn); len(frames) != 0 {
		t.Fatalf("frames = %v, want none", frames)
	}
}

func TestUpdateWithoutDataIsDropped(t *testing.T) {
	ctl := newTestController()
	conn := newTestConn()
	ctl.handleEvent("conn-a", conn, nil, "", []byte(`{"type":"join","session_id":"S1","username":"alice"}`))
	drain(t, conn)

	ctl.handleEvent("conn-a", conn, nil, "", []byte(`{"type":"update","session_id":"S1"}`))

	frames := drain(t, conn)
	if len(frames) != 1 || frames[0]["type"] != "error" {
		t.Fatalf("frames = %v, want one error", frames)
	}
	sess, _ := ctl.Orch.Sessions.Get("S1")
	if sess.Canvas() != nil {
		t.Fatalf("canvas mutated by empty update")
	}
}

func TestUpdateFansOutToPeer(t *testing.T) {
	ctl := newTestController()
	alice := newTestConn()
	bob := newTestConn()
	ctl.handleEvent("conn-a", alice, nil, "", []byte(`{"type":"join","session_id":"S1","username":"alice"}`))
	ctl.handleEvent("conn-b", bob, nil, "", []byte(`{"type":"join","session_id":"S1","username":"bob"}`))
	drain(t, alice)
	drain(t, bob)

	ctl.handleEvent("conn-a", alice, nil, "", []byte(`{"type":"update","session_id":"S1","data":"\"blob-A\""}`))

	if frames := drain(t, alice); len(frames) != 0 {
		t.Fatalf("origin got %v", frames)
	}
	frames := drain(t, bob)
	if len(frames) != 1 || frames[0]["type"] != core.EventStateUpdate {
		t.Fatalf("peer frames = %v", frames)
	}
	if frames[0]["data"] != "blob-A" {
		t.Fatalf("peer data = %v", frames[0]["data"])
	}
}

func TestLeaveAcknowledges(t *testing.T) {
	ctl := newTestController()
	conn := newTestConn()
	ctl.handleEvent("conn-a", conn, nil, "", []byte(`{"type":"join","session_id":"S1","username":"alice"}`))
	drain(t, conn)

	ctl.handleEvent("conn-a", conn, nil, "", []byte(`{"type":"leave"}`))

	frames := drain(t, conn)
	if len(frames) != 1 || frames[0]["type"] != "left" {
		t.Fatalf("frames = %v, want left ack", frames)
	}
	sess, _ := ctl.Orch.Sessions.Get("S1")
	if snap := sess.Presence(); snap.Count != 0 {
		t.Fatalf("presence after leave = %+v", snap)
	}
}

func TestPingPong(t *testing.T) {
	ctl := newTestController()
	conn := newTestConn()

	ctl.handleEvent("conn-a", conn, nil, "", []byte(`{"type":"ping"}`))

	frames := drain(t, conn)
	if len(frames) != 1 || frames[0]["type"] != "pong" {
		t.Fatalf("frames = %v, want pong", frames)
	}
}
