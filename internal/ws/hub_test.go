package ws

import "testing"

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub()

	hub.AddClient(1, nil, ConnInfo{})
	if len(hub.rooms) != 1 {
		t.Fatalf("expected chat room to be created")
	}

	hub.RemoveClient(1, nil)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected chat room to be removed")
	}
}

func TestHubConnInfoTracked(t *testing.T) {
	hub := NewHub()

	hub.AddClient(2, nil, ConnInfo{ConnID: "abc", UserID: 7})
	info, ok := hub.getConnInfo(2, nil)
	if !ok || info.ConnID != "abc" || info.UserID != 7 {
		t.Fatalf("expected conn info to be tracked, got %+v", info)
	}

	hub.RemoveClient(2, nil)
	if _, ok := hub.getConnInfo(2, nil); ok {
		t.Fatalf("expected conn info to be removed")
	}
}
