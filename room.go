package main

import "sync"

const historyCap = 100

// Room is one chat channel. Its mutex serializes every mutation and every
// broadcast-issuing section for the room, so join/leave/send for the same
// room never interleave partially; the helper methods below expect the
// caller to hold mu. The code is immutable once assigned.
type Room struct {
	code string
	name string

	mu       sync.Mutex
	members  map[string]Member
	messages []ChatMessage
}

func NewRoom(code string, name string) *Room {
	return &Room{code: code, name: name, members: make(map[string]Member)}
}

func (r *Room) Code() string { return r.code }
func (r *Room) Name() string { return r.name }

func (r *Room) addMember(connID string, m Member) {
	r.members[connID] = m
}

// removeMember reports whether the connection was still a member, which is
// the idempotency gate for racing leave/disconnect cleanup.
func (r *Room) removeMember(connID string) (Member, bool) {
	m, exists := r.members[connID]
	delete(r.members, connID)
	return m, exists
}

func (r *Room) memberList() []Member {
	members := make([]Member, 0, len(r.members))
	for _, m := range r.members {
		members = append(members, m)
	}
	return members
}

func (r *Room) otherMemberIDs(excludeConnID string) []string {
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		if id != excludeConnID {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *Room) appendMessage(msg ChatMessage) {
	r.messages = append(r.messages, msg)
	r.trim()
}

// trim drops the oldest entries beyond the cap. FIFO, not LRU: no message
// is ever "used" after it is stored.
func (r *Room) trim() {
	if overflow := len(r.messages) - historyCap; overflow > 0 {
		r.messages = append([]ChatMessage(nil), r.messages[overflow:]...)
	}
}

func (r *Room) history() []ChatMessage {
	return append([]ChatMessage(nil), r.messages...)
}
