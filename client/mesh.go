package client

import (
	"encoding/json"
	"sync"
)

// SignalPayload is the envelope relayed between peers. Only the kind is
// interpreted here; bodies pass straight through to the SessionEngine.
type SignalPayload struct {
	Kind string          `json:"kind"`
	Body json.RawMessage `json:"body"`
}

const (
	KindOffer     = "offer"
	KindAnswer    = "answer"
	KindCandidate = "candidate"
)

// SessionEngine produces and consumes the opaque negotiation bodies. The
// real implementation wraps the platform peer-connection API; tests use a
// recording fake. Engine failures are local and non-fatal: they fail one
// peer's negotiation, never the mesh.
type SessionEngine interface {
	Offer(peerID string) (json.RawMessage, error)
	Answer(peerID string, offer json.RawMessage) (json.RawMessage, error)
	AcceptAnswer(peerID string, answer json.RawMessage) error
	AddCandidate(peerID string, candidate json.RawMessage) error
	Close(peerID string)
}

// SignalSender delivers an outbound envelope to one peer, via the relay.
type SignalSender func(targetID string, payload SignalPayload)

// Mesh keeps one Peer per remote participant and drives each through its
// negotiation phases. Everyone offers to the peers that were already in the
// call when they joined, and answers the peers that arrive later, so every
// pair negotiates exactly once.
type Mesh struct {
	mu     sync.Mutex
	engine SessionEngine
	send   SignalSender
	peers  map[string]*Peer
	tracks map[string]Track
}

func NewMesh(engine SessionEngine, send SignalSender) *Mesh {
	return &Mesh{engine: engine, send: send, peers: make(map[string]*Peer), tracks: make(map[string]Track)}
}

// AddLocalTrack attaches a local track to every current and future peer.
func (m *Mesh) AddLocalTrack(track Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks[track.Kind()] = track
	for _, p := range m.peers {
		if p.phase != PhaseClosed {
			p.tracks[track.Kind()] = track
		}
	}
}

// ReplaceLocalTrack substitutes a live track on every non-closed peer
// without touching any negotiation phase; this is how screen share starts
// and stops. The replaced track is stopped once, here.
func (m *Mesh) ReplaceLocalTrack(track Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, exists := m.tracks[track.Kind()]; exists {
		old.Stop()
	}
	m.tracks[track.Kind()] = track
	for _, p := range m.peers {
		if p.phase != PhaseClosed {
			p.tracks[track.Kind()] = track
		}
	}
}

// HandlePeerList creates an initiator session per existing peer and sends
// each an offer. This is the reply to joining the call.
func (m *Mesh) HandlePeerList(ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for _, id := range ids {
		if _, exists := m.peers[id]; exists {
			continue
		}
		p := newPeer(id, Initiator, m.tracks)
		m.peers[id] = p
		body, err := m.engine.Offer(id)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			m.closePeer(p)
			continue
		}
		p.phase = PhaseOffering
		m.send(id, SignalPayload{Kind: KindOffer, Body: body})
	}
	return firstErr
}

// HandlePeerJoin records a late joiner. The new peer offers to us, so the
// record waits in PhaseNew until its offer arrives.
func (m *Mesh) HandlePeerJoin(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.peers[id]; exists {
		return
	}
	m.peers[id] = newPeer(id, Responder, m.tracks)
}

// HandleSignal routes one inbound envelope. Unknown kinds are dropped.
func (m *Mesh) HandleSignal(fromID string, payload SignalPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch payload.Kind {
	case KindOffer:
		return m.handleOffer(fromID, payload.Body)
	case KindAnswer:
		return m.handleAnswer(fromID, payload.Body)
	case KindCandidate:
		return m.handleCandidate(fromID, payload.Body)
	}
	return nil
}

func (m *Mesh) handleOffer(fromID string, body json.RawMessage) error {
	p, exists := m.peers[fromID]
	if !exists {
		// Offer beat the peer-join notice; the relay guarantees neither
		// ordering across senders nor delivery.
		p = newPeer(fromID, Responder, m.tracks)
		m.peers[fromID] = p
	}
	switch p.phase {
	case PhaseClosed:
		return ErrPeerClosed
	case PhaseConnected:
		return ErrRenegotiation
	}
	p.phase = PhaseAnswering
	answer, err := m.engine.Answer(fromID, body)
	if err != nil {
		m.closePeer(p)
		return err
	}
	m.send(fromID, SignalPayload{Kind: KindAnswer, Body: answer})
	p.phase = PhaseConnected
	return m.flushCandidates(p)
}

func (m *Mesh) handleAnswer(fromID string, body json.RawMessage) error {
	p, exists := m.peers[fromID]
	if !exists {
		return ErrUnknownPeer
	}
	switch p.phase {
	case PhaseClosed:
		return ErrPeerClosed
	case PhaseConnected:
		return ErrRenegotiation
	}
	if err := m.engine.AcceptAnswer(fromID, body); err != nil {
		m.closePeer(p)
		return err
	}
	p.phase = PhaseConnected
	return m.flushCandidates(p)
}

func (m *Mesh) handleCandidate(fromID string, body json.RawMessage) error {
	p, exists := m.peers[fromID]
	if !exists {
		return ErrUnknownPeer
	}
	applyNow, err := p.addCandidate(body)
	if err != nil || !applyNow {
		return err
	}
	return m.engine.AddCandidate(fromID, body)
}

func (m *Mesh) flushCandidates(p *Peer) error {
	var firstErr error
	for _, body := range p.drainPending() {
		if err := m.engine.AddCandidate(p.id, body); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// HandlePeerLeave releases the record for a departed peer, in whatever
// phase it is in.
func (m *Mesh) HandlePeerLeave(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, exists := m.peers[id]; exists {
		m.closePeer(p)
		delete(m.peers, id)
	}
}

// Close tears down every peer and stops the local tracks. This is local
// call termination.
func (m *Mesh) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.peers {
		m.closePeer(p)
		delete(m.peers, id)
	}
	for kind, track := range m.tracks {
		track.Stop()
		delete(m.tracks, kind)
	}
}

// Peer returns the record for a remote participant, if any.
func (m *Mesh) Peer(id string) (*Peer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, exists := m.peers[id]
	return p, exists
}

func (m *Mesh) closePeer(p *Peer) {
	if p.phase == PhaseClosed {
		return
	}
	p.close()
	m.engine.Close(p.id)
}
