package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const (
	maxNameLength = 40
	maxTextLength = 2000
	defaultName   = "Guest"
)

// Hub dispatches every inbound event to membership, chat fan-out, or the
// call signaling relay. Room state is only touched under that room's mutex,
// so the steps of one operation appear atomic to every other connection in
// the room; operations on different rooms proceed independently.
type Hub struct {
	directory *Directory
	registry  *Registry
}

func NewHub(directory *Directory, registry *Registry) *Hub {
	return &Hub{directory: directory, registry: registry}
}

// Join binds the connection to the resolved room under a fresh identity.
// The joiner gets the full snapshot, everyone gets the new member list, and
// everyone else gets the system notice. A connection already bound elsewhere
// leaves that room first, so both rooms observe ordinary transitions.
func (h *Hub) Join(c *ClientConn, codeOrName string, requestedName string) *Room {
	if c.RoomCode() != "" {
		h.Leave(c, false)
	}
	room := h.directory.GetOrCreateByCodeOrName(codeOrName)
	name := truncateRunes(strings.TrimSpace(requestedName), maxNameLength)
	if name == "" {
		name = defaultName
	}
	color := randomColor()

	room.mu.Lock()
	defer room.mu.Unlock()
	c.SetIdentity(name, color)
	c.BindRoom(room.Code())
	room.addMember(c.ID(), Member{Name: name, Color: color})
	c.SendRoomJoined(room.Name(), room.Code(), room.history())
	h.broadcastMembers(room)
	ts := time.Now().UnixMilli()
	for _, id := range room.otherMemberIDs(c.ID()) {
		if peer, exists := h.registry.Get(id); exists {
			peer.SendSystemNotice("system:join", name, ts)
		}
	}
	return room
}

// Leave removes the connection from its room, if any. Safe to call twice:
// the member-set removal is the idempotency gate, so a disconnect racing an
// explicit leave runs the notifications exactly once. A disconnect also
// evicts the connection from any active call mesh.
func (h *Hub) Leave(c *ClientConn, disconnected bool) {
	roomCode := c.RoomCode()
	if roomCode == "" {
		return
	}
	room, exists := h.directory.GetByCode(roomCode)
	if !exists {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	member, wasMember := room.removeMember(c.ID())
	if !wasMember {
		return
	}
	wasInCall := disconnected && c.EndCall()
	c.ClearRoom()
	ts := time.Now().UnixMilli()
	for _, id := range room.otherMemberIDs(c.ID()) {
		if peer, exists := h.registry.Get(id); exists {
			peer.SendSystemNotice("system:leave", member.Name, ts)
		}
	}
	h.broadcastMembers(room)
	if wasInCall {
		h.notifyPeerLeave(room, c.ID())
	}
}

// SendMessage appends to the room history and fans out to every member,
// sender included, so the sender's UI confirms delivery through the same
// path as everyone else's.
func (h *Hub) SendMessage(c *ClientConn, text string, imageURL string) {
	room, member, exists := h.memberRoom(c)
	if !exists {
		return
	}
	defer room.mu.Unlock()
	msg := ChatMessage{
		Author:   member.Name,
		Color:    member.Color,
		Text:     truncateRunes(text, maxTextLength),
		ImageURL: imageURL,
		Ts:       time.Now().UnixMilli(),
	}
	room.appendMessage(msg)
	for id := range room.members {
		if peer, exists := h.registry.Get(id); exists {
			peer.SendNewMessage(msg)
		}
	}
}

// SetTyping relays to every other member. No state is kept server side; a
// lost stop event is compensated by the client-side auto-clear.
func (h *Hub) SetTyping(c *ClientConn, typing bool) {
	room, member, exists := h.memberRoom(c)
	if !exists {
		return
	}
	defer room.mu.Unlock()
	for _, id := range room.otherMemberIDs(c.ID()) {
		if peer, exists := h.registry.Get(id); exists {
			peer.SendTypingNotice(member.Name, typing)
		}
	}
}

// CallJoin announces the new peer to the room and replies with the ids the
// joiner must offer to. The list reflects membership at this instant, under
// the room lock, never a stale snapshot.
func (h *Hub) CallJoin(c *ClientConn) {
	room, member, exists := h.memberRoom(c)
	if !exists {
		return
	}
	defer room.mu.Unlock()
	c.StartCall()
	others := room.otherMemberIDs(c.ID())
	for _, id := range others {
		if peer, exists := h.registry.Get(id); exists {
			peer.SendPeerJoin(c.ID(), member.Name)
		}
	}
	c.SendPeers(others)
}

// RelaySignal delivers the opaque payload to the target, tagged with the
// sender id. A vanished target is silently dropped; the negotiation protocol
// on top is retryable and tolerates loss.
func (h *Hub) RelaySignal(c *ClientConn, targetID string, data json.RawMessage) {
	if c.RoomCode() == "" {
		return
	}
	target, exists := h.registry.Get(targetID)
	if !exists {
		return
	}
	target.SendSignal(c.ID(), data)
}

// CallLeave tells the rest of the room to release their peer records for
// this connection. No-op unless the connection had joined the call.
func (h *Hub) CallLeave(c *ClientConn) {
	roomCode := c.RoomCode()
	if roomCode == "" {
		return
	}
	room, exists := h.directory.GetByCode(roomCode)
	if !exists {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if !c.EndCall() {
		return
	}
	h.notifyPeerLeave(room, c.ID())
}

// Disconnect is the cleanup path for a dropped transport. It must be
// indistinguishable in effect from an explicit leave plus call leave.
func (h *Hub) Disconnect(c *ClientConn) {
	h.Leave(c, true)
	h.registry.Remove(c.ID())
	c.Close()
}

// memberRoom resolves the connection's room and its member snapshot, and on
// success returns with the room lock held.
func (h *Hub) memberRoom(c *ClientConn) (*Room, Member, bool) {
	roomCode := c.RoomCode()
	if roomCode == "" {
		return nil, Member{}, false
	}
	room, exists := h.directory.GetByCode(roomCode)
	if !exists {
		return nil, Member{}, false
	}
	room.mu.Lock()
	member, isMember := room.members[c.ID()]
	if !isMember {
		room.mu.Unlock()
		return nil, Member{}, false
	}
	return room, member, true
}

func (h *Hub) broadcastMembers(room *Room) {
	members := room.memberList()
	for id := range room.members {
		if peer, exists := h.registry.Get(id); exists {
			peer.SendMembers(members)
		}
	}
}

func (h *Hub) notifyPeerLeave(room *Room, connID string) {
	for _, id := range room.otherMemberIDs(connID) {
		if peer, exists := h.registry.Get(id); exists {
			peer.SendPeerLeave(connID)
		}
	}
}

func randomColor() string {
	return fmt.Sprintf("hsl(%d, 70%%, 55%%)", rand.Intn(360))
}
