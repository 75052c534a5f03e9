package main

import (
	"errors"
	"testing"
)

func TestDecodeClientMessage(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"room:join","codeOrName":"demo","name":"Ana"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	join, ok := msg.(JoinRoomMessage)
	if !ok {
		t.Fatalf("wrong type decoded: %T", msg)
	}
	if join.CodeOrName != "demo" || join.Name != "Ana" {
		t.Errorf("wrong fields decoded: %+v", join)
	}

	msg, err = DecodeClientMessage([]byte(`{"type":"message:typing","typing":true}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typing := msg.(TypingMessage); !typing.Typing {
		t.Errorf("typing flag lost in decode")
	}

	msg, err = DecodeClientMessage([]byte(`{"type":"webrtc:signal","targetId":"abc","data":{"kind":"offer"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	signal := msg.(CallSignalMessage)
	if signal.TargetID != "abc" {
		t.Errorf("wrong target expected: %v got: %v", "abc", signal.TargetID)
	}
	if string(signal.Data) != `{"kind":"offer"}` {
		t.Errorf("payload not preserved verbatim: %s", signal.Data)
	}

	for _, raw := range []string{`{"type":"room:leave"}`, `{"type":"webrtc:join"}`, `{"type":"webrtc:leave"}`, `{"type":"message:send","text":"hi"}`} {
		if _, err := DecodeClientMessage([]byte(raw)); err != nil {
			t.Errorf("unexpected error for %s: %v", raw, err)
		}
	}
}

func TestDecodeClientMessageUnknownType(t *testing.T) {
	_, err := DecodeClientMessage([]byte(`{"type":"room:explode"}`))
	if !errors.Is(err, ErrUndefinedType) {
		t.Errorf("wrong error expected: %v got: %v", ErrUndefinedType, err)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("hello", 40); got != "hello" {
		t.Errorf("short string changed: %v", got)
	}
	if got := truncateRunes("hello", 3); got != "hel" {
		t.Errorf("wrong truncation expected: %v got: %v", "hel", got)
	}
	if got := truncateRunes("héllo", 2); got != "hé" {
		t.Errorf("rune boundary broken: %v", got)
	}
}
