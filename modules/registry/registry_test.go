package registry

import (
	"errors"
	"testing"

	chat "github.com/example/terminal-chat/domain/chat"
)

// fakeMember records every event sent to it.
type fakeMember struct {
	id       string
	username string
	events   []chat.Event
	sendErr  error
}

func (f *fakeMember) ConnID() string   { return f.id }
func (f *fakeMember) Username() string { return f.username }
func (f *fakeMember) Send(ev chat.Event) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.events = append(f.events, ev)
	return nil
}

func TestRegistry_AddAndRemoveMember(t *testing.T) {
	r := NewRegistry()
	alice := &fakeMember{id: "c1", username: "alice"}

	r.AddMember("general", alice)
	if got := r.MemberCount("general"); got != 1 {
		t.Errorf("MemberCount() = %d, want 1", got)
	}

	r.RemoveMember("general", "c1")
	if got := r.MemberCount("general"); got != 0 {
		t.Errorf("MemberCount() after remove = %d, want 0", got)
	}

	// Empty rooms are pruned.
	if got := r.RoomCount(); got != 0 {
		t.Errorf("RoomCount() after prune = %d, want 0", got)
	}
}

func TestRegistry_RemoveAbsentMemberIsNoop(t *testing.T) {
	r := NewRegistry()
	r.AddMember("general", &fakeMember{id: "c1", username: "alice"})

	// Neither an unknown connection nor an unknown room may panic or
	// disturb existing membership.
	r.RemoveMember("general", "c2")
	r.RemoveMember("nosuchroom", "c1")
	r.RemoveMember("general", "c1")
	r.RemoveMember("general", "c1")

	if got := r.MemberCount("general"); got != 0 {
		t.Errorf("MemberCount() = %d, want 0", got)
	}
}

func TestRegistry_BroadcastReachesAllMembers(t *testing.T) {
	r := NewRegistry()
	alice := &fakeMember{id: "c1", username: "alice"}
	bob := &fakeMember{id: "c2", username: "bob"}
	carol := &fakeMember{id: "c3", username: "carol"}
	r.AddMember("general", alice)
	r.AddMember("general", bob)
	r.AddMember("random", carol)

	r.Broadcast("general", chat.Event{Type: chat.EventChatMessage, Text: "alice: hi"})

	if len(alice.events) != 1 || len(bob.events) != 1 {
		t.Fatalf("general members got %d/%d events, want 1/1", len(alice.events), len(bob.events))
	}
	if len(carol.events) != 0 {
		t.Errorf("member of another room got %d events, want 0", len(carol.events))
	}
	if alice.events[0].Text != "alice: hi" {
		t.Errorf("event text = %q, want %q", alice.events[0].Text, "alice: hi")
	}
}

func TestRegistry_BroadcastExcludesActor(t *testing.T) {
	r := NewRegistry()
	alice := &fakeMember{id: "c1", username: "alice"}
	bob := &fakeMember{id: "c2", username: "bob"}
	r.AddMember("general", alice)
	r.AddMember("general", bob)

	r.Broadcast("general", chat.Event{Type: chat.EventUserJoined, Message: "bob joined the room"}, "c2")

	if len(alice.events) != 1 {
		t.Errorf("peer got %d events, want 1", len(alice.events))
	}
	if len(bob.events) != 0 {
		t.Errorf("excluded actor got %d events, want 0", len(bob.events))
	}
}

func TestRegistry_BroadcastUnknownRoom(t *testing.T) {
	r := NewRegistry()
	// Must not panic.
	r.Broadcast("nosuchroom", chat.Event{Type: chat.EventChatMessage, Text: "x: y"})
}

func TestRegistry_BroadcastSkipsFailingMember(t *testing.T) {
	r := NewRegistry()
	broken := &fakeMember{id: "c1", username: "alice", sendErr: errors.New("write: broken pipe")}
	bob := &fakeMember{id: "c2", username: "bob"}
	r.AddMember("general", broken)
	r.AddMember("general", bob)

	r.Broadcast("general", chat.Event{Type: chat.EventChatMessage, Text: "bob: hi"})

	if len(bob.events) != 1 {
		t.Errorf("healthy member got %d events, want 1", len(bob.events))
	}
}

func TestRegistry_Members(t *testing.T) {
	r := NewRegistry()
	r.AddMember("general", &fakeMember{id: "c1", username: "alice"})
	r.AddMember("general", &fakeMember{id: "c2", username: "bob"})

	names := r.Members("general")
	if len(names) != 2 {
		t.Fatalf("Members() count = %d, want 2", len(names))
	}
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["alice"] || !seen["bob"] {
		t.Errorf("Members() = %v, want alice and bob", names)
	}
}
