package main

import (
	"strings"
	"sync"

	"chatmesh/code"
)

// Directory maps room codes to rooms, with a case-insensitive name index so
// joining by an existing room's name never creates a duplicate. Its mutex is
// the single serialization point for cross-room lookup and creation; rooms
// are never deleted, empty ones persist so a later join by name or by an old
// invite link lands in the same room.
type Directory struct {
	mu     sync.RWMutex
	byCode map[string]*Room
	byName map[string]string
}

func NewDirectory() *Directory {
	return &Directory{byCode: make(map[string]*Room), byName: make(map[string]string)}
}

// GetOrCreateByCodeOrName resolves input as an exact code first, then as a
// case-insensitive name, and otherwise creates a room. Empty input gets a
// synthesized room-<code> name.
func (d *Directory) GetOrCreateByCodeOrName(input string) *Room {
	input = strings.TrimSpace(input)
	d.mu.Lock()
	defer d.mu.Unlock()
	if room, exists := d.byCode[input]; exists {
		return room
	}
	if roomCode, exists := d.byName[normalizeName(input)]; exists {
		return d.byCode[roomCode]
	}
	roomCode := d.generateCode()
	name := input
	if name == "" {
		name = "room-" + roomCode
	}
	room := NewRoom(roomCode, name)
	d.byCode[roomCode] = room
	d.byName[normalizeName(name)] = roomCode
	LogCreatedRoom(roomCode, name)
	return room
}

func (d *Directory) GetByCode(roomCode string) (*Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	room, exists := d.byCode[roomCode]
	return room, exists
}

// Collision odds over a 32-glyph, 6-character space are negligible, but the
// retry keeps creation correct rather than probably-correct.
func (d *Directory) generateCode() string {
	for {
		roomCode := code.GenerateRandom()
		if _, exists := d.byCode[roomCode]; !exists {
			return roomCode
		}
	}
}

func normalizeName(name string) string {
	return strings.ToLower(name)
}
