// Package client holds the call-side state of one participant: a record per
// remote peer tracking its negotiation phase, the full-mesh peer table, and
// the typing-indicator aggregation. Negotiation bodies stay opaque; they are
// produced and consumed by a SessionEngine supplied by the embedder.
package client

import (
	"encoding/json"
	"errors"
)

type Role int

const (
	// Initiator sends the offer; assigned to peers discovered through the
	// initial peer list.
	Initiator Role = iota
	// Responder answers an incoming offer; assigned to peers discovered
	// through a peer-join notice.
	Responder
)

func (r Role) String() string {
	if r == Initiator {
		return "initiator"
	}
	return "responder"
}

type Phase int

const (
	// PhaseNew: record created, negotiation not started.
	PhaseNew Phase = iota
	// PhaseOffering: local offer sent, awaiting the remote answer.
	PhaseOffering
	// PhaseAnswering: remote offer received, local answer not yet sent.
	PhaseAnswering
	// PhaseConnected: media flowing.
	PhaseConnected
	// PhaseClosed: torn down; the record is dead.
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseNew:
		return "new"
	case PhaseOffering:
		return "offering"
	case PhaseAnswering:
		return "answering"
	case PhaseConnected:
		return "connected"
	default:
		return "closed"
	}
}

// Track is one attached local media track. Stop releases the underlying
// capture; tracks are shared across peers, so only the mesh stops them.
type Track interface {
	Kind() string
	Stop()
}

var (
	ErrUnknownPeer   = errors.New("unknown peer")
	ErrPeerClosed    = errors.New("peer is closed")
	ErrRenegotiation = errors.New("renegotiation is not supported")
)

// Peer is the negotiation session with one remote participant. The role is
// fixed at creation; the phase only moves forward. Candidates arriving
// before the session is connected are queued and flushed after, and applying
// the same candidate twice is a no-op.
type Peer struct {
	id      string
	role    Role
	phase   Phase
	tracks  map[string]Track
	pending []json.RawMessage
	seen    map[string]struct{}
}

func newPeer(id string, role Role, tracks map[string]Track) *Peer {
	attached := make(map[string]Track, len(tracks))
	for kind, track := range tracks {
		attached[kind] = track
	}
	return &Peer{id: id, role: role, tracks: attached, seen: make(map[string]struct{})}
}

func (p *Peer) ID() string   { return p.id }
func (p *Peer) Role() Role   { return p.role }
func (p *Peer) Phase() Phase { return p.phase }

// addCandidate queues or hands over a candidate depending on phase, and
// reports whether it should be applied now. Duplicates are swallowed.
func (p *Peer) addCandidate(body json.RawMessage) (bool, error) {
	if p.phase == PhaseClosed {
		return false, ErrPeerClosed
	}
	if _, dup := p.seen[string(body)]; dup {
		return false, nil
	}
	p.seen[string(body)] = struct{}{}
	if p.phase != PhaseConnected {
		p.pending = append(p.pending, body)
		return false, nil
	}
	return true, nil
}

// drainPending returns the queued candidates for application once the
// session reaches connected.
func (p *Peer) drainPending() []json.RawMessage {
	queued := p.pending
	p.pending = nil
	return queued
}

// close releases the record. Attached tracks are shared with other peers and
// are detached here, not stopped.
func (p *Peer) close() {
	p.phase = PhaseClosed
	p.tracks = nil
	p.pending = nil
}
