package main

import (
	"encoding/json"
	"errors"
)

func UnmarshalJSON[T any](data []byte) T {
	var parsed T
	json.Unmarshal(data, &parsed)
	return parsed
}

// Member is the name/color snapshot kept per room member.
type Member struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ChatMessage captures the author identity at send time; a later rejoin
// under a different name or color never rewrites history.
type ChatMessage struct {
	Author   string `json:"author"`
	Color    string `json:"color"`
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl,omitempty"`
	Ts       int64  `json:"ts"`
}

// Client to server messages.

type JoinRoomMessage struct {
	CodeOrName string `json:"codeOrName"`
	Name       string `json:"name"`
}

type LeaveRoomMessage struct{}

type SendChatMessage struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
}

type TypingMessage struct {
	Typing bool `json:"typing"`
}

type CallJoinMessage struct{}

type CallSignalMessage struct {
	TargetID string          `json:"targetId"`
	Data     json.RawMessage `json:"data"`
}

type CallLeaveMessage struct{}

// Server to client messages.

type RoomJoinedMessage struct {
	Type     string        `json:"type"`
	Name     string        `json:"name"`
	Code     string        `json:"code"`
	Messages []ChatMessage `json:"messages"`
}

type MembersMessage struct {
	Type    string   `json:"type"`
	Members []Member `json:"members"`
}

type SystemNoticeMessage struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Ts   int64  `json:"ts"`
}

type NewChatMessage struct {
	Type string `json:"type"`
	ChatMessage
}

type TypingNoticeMessage struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	State bool   `json:"state"`
}

type PeersMessage struct {
	Type  string   `json:"type"`
	Peers []string `json:"peers"`
}

type PeerJoinMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PeerSignalMessage struct {
	Type   string          `json:"type"`
	FromID string          `json:"fromId"`
	Data   json.RawMessage `json:"data"`
}

type PeerLeaveMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

var ErrUndefinedType = errors.New("incorrect type")

// DecodeClientMessage returns one of the client message structs.
func DecodeClientMessage(msg []byte) (any, error) {
	message := UnmarshalJSON[struct {
		Type string `json:"type"`
	}](msg)
	var parsedMessage any
	switch message.Type {
	case "room:join":
		parsedMessage = UnmarshalJSON[JoinRoomMessage](msg)
	case "room:leave":
		parsedMessage = LeaveRoomMessage{}
	case "message:send":
		parsedMessage = UnmarshalJSON[SendChatMessage](msg)
	case "message:typing":
		parsedMessage = UnmarshalJSON[TypingMessage](msg)
	case "webrtc:join":
		parsedMessage = CallJoinMessage{}
	case "webrtc:signal":
		parsedMessage = UnmarshalJSON[CallSignalMessage](msg)
	case "webrtc:leave":
		parsedMessage = CallLeaveMessage{}
	default:
		return nil, ErrUndefinedType
	}
	return parsedMessage, nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
