package main

import (
	"encoding/json"
	"net"
	"sync"

	"github.com/gobwas/ws/wsutil"
)

const outboxSize = 64

// ClientConn binds one websocket session to an identity and at most one
// room. All writes go through a single outbox goroutine so that delivery
// order per recipient matches the order sends are issued; a full outbox
// drops the message rather than blocking a room's critical section.
type ClientConn struct {
	id   string
	conn net.Conn

	mu       sync.Mutex
	name     string
	color    string
	roomCode string
	inCall   bool
	closed   bool
	outbox   chan []byte
}

func NewClientConn(id string, conn net.Conn) *ClientConn {
	c := &ClientConn{id: id, conn: conn, outbox: make(chan []byte, outboxSize)}
	go c.writeLoop()
	return c
}

func (c *ClientConn) ID() string { return c.id }

func (c *ClientConn) writeLoop() {
	for msg := range c.outbox {
		if err := wsutil.WriteServerText(c.conn, msg); err != nil {
			return
		}
	}
}

// Close stops the outbox writer. The caller owns closing the underlying
// net.Conn; read loop teardown and Close may both run, so it is idempotent.
func (c *ClientConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.outbox)
}

func (c *ClientConn) enqueue(message any) {
	encoded, _ := json.Marshal(message)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.outbox <- encoded:
	default:
	}
}

func (c *ClientConn) ReadMessage() (any, error) {
	msg, err := wsutil.ReadClientText(c.conn)
	if err != nil {
		return nil, err
	}
	return DecodeClientMessage(msg)
}

// Identity and room binding, mutated only by the hub.

func (c *ClientConn) SetIdentity(name string, color string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
	c.color = color
}

func (c *ClientConn) Identity() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name, c.color
}

func (c *ClientConn) BindRoom(roomCode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = roomCode
}

func (c *ClientConn) ClearRoom() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = ""
	c.inCall = false
}

func (c *ClientConn) RoomCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomCode
}

func (c *ClientConn) StartCall() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inCall = true
}

// EndCall reports whether the connection was in the call, and clears the
// flag, so racing disconnect/leave paths emit at most one departure notice.
func (c *ClientConn) EndCall() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	was := c.inCall
	c.inCall = false
	return was
}

// Typed senders, one per server to client event.

func (c *ClientConn) SendRoomJoined(name string, roomCode string, messages []ChatMessage) {
	c.enqueue(RoomJoinedMessage{Type: "room:joined", Name: name, Code: roomCode, Messages: messages})
}

func (c *ClientConn) SendMembers(members []Member) {
	c.enqueue(MembersMessage{Type: "room:members", Members: members})
}

func (c *ClientConn) SendSystemNotice(kind string, name string, ts int64) {
	c.enqueue(SystemNoticeMessage{Type: kind, Name: name, Ts: ts})
}

func (c *ClientConn) SendNewMessage(msg ChatMessage) {
	c.enqueue(NewChatMessage{Type: "message:new", ChatMessage: msg})
}

func (c *ClientConn) SendTypingNotice(name string, state bool) {
	c.enqueue(TypingNoticeMessage{Type: "message:typing", Name: name, State: state})
}

func (c *ClientConn) SendPeers(peers []string) {
	c.enqueue(PeersMessage{Type: "webrtc:peers", Peers: peers})
}

func (c *ClientConn) SendPeerJoin(id string, name string) {
	c.enqueue(PeerJoinMessage{Type: "webrtc:peer-join", ID: id, Name: name})
}

func (c *ClientConn) SendSignal(fromID string, data json.RawMessage) {
	c.enqueue(PeerSignalMessage{Type: "webrtc:signal", FromID: fromID, Data: data})
}

func (c *ClientConn) SendPeerLeave(id string) {
	c.enqueue(PeerLeaveMessage{Type: "webrtc:peer-leave", ID: id})
}
