package cluster

import (
	"reflect"
	"testing"

	"github.com/ValentinKolb/apocrypha/internal/cluster/internal"
	"github.com/ValentinKolb/apocrypha/lib/document"
	"github.com/ValentinKolb/apocrypha/lib/store"
	sm "github.com/lni/dragonboat/v4/statemachine"
)

func newTestFSM() *StateMachine {
	factory := Factory(document.New, 0)
	return factory(1, 1).(*StateMachine)
}

func TestUpdateThenLookup(t *testing.T) {
	fsm := newTestFSM()

	write := internal.Command{Tokens: []string{"apples", "granny", "=", "good"}}
	res, err := fsm.Update(sm.Entry{Cmd: write.Serialize()})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.Value != uint64(store.RetCSuccess) {
		t.Fatalf("Update: got retcode %d", res.Value)
	}

	read := internal.Command{Tokens: []string{"apples", "granny"}}
	out, err := fsm.Lookup(read)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	qr := out.(QueryResult)
	if qr.Err != "" {
		t.Fatalf("Lookup: unexpected error %q", qr.Err)
	}
	if !reflect.DeepEqual(qr.Lines, []string{"good"}) {
		t.Fatalf("Lookup: got %v", qr.Lines)
	}
}

func TestUpdateBadCommandReturnsBadArchive(t *testing.T) {
	fsm := newTestFSM()
	res, err := fsm.Update(sm.Entry{Cmd: []byte{0x01}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.Value != uint64(store.RetCBadArchive) {
		t.Fatalf("got retcode %d, want RetCBadArchive", res.Value)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	fsm := newTestFSM()
	write := internal.Command{Tokens: []string{"a", "=", "b"}}
	if _, err := fsm.Update(sm.Entry{Cmd: write.Serialize()}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	data, err := fsm.store.ForceSnapshot()
	if err != nil {
		t.Fatalf("ForceSnapshot: %v", err)
	}

	restored := newTestFSM()
	doc, err := document.FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	restored.store = store.New(doc, 0)

	out, err := restored.Lookup(internal.Command{Tokens: []string{"a"}})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	qr := out.(QueryResult)
	if !reflect.DeepEqual(qr.Lines, []string{"b"}) {
		t.Fatalf("got %v", qr.Lines)
	}
}
