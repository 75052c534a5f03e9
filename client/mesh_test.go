package client

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineCall struct {
	op     string
	peerID string
	body   string
}

// fakeEngine records calls and produces canned bodies.
type fakeEngine struct {
	calls   []engineCall
	failAll bool
}

func (e *fakeEngine) Offer(peerID string) (json.RawMessage, error) {
	e.calls = append(e.calls, engineCall{"offer", peerID, ""})
	if e.failAll {
		return nil, fmt.Errorf("offer failed")
	}
	return json.RawMessage(`{"sdp":"offer-` + peerID + `"}`), nil
}

func (e *fakeEngine) Answer(peerID string, offer json.RawMessage) (json.RawMessage, error) {
	e.calls = append(e.calls, engineCall{"answer", peerID, string(offer)})
	if e.failAll {
		return nil, fmt.Errorf("answer failed")
	}
	return json.RawMessage(`{"sdp":"answer-` + peerID + `"}`), nil
}

func (e *fakeEngine) AcceptAnswer(peerID string, answer json.RawMessage) error {
	e.calls = append(e.calls, engineCall{"accept", peerID, string(answer)})
	if e.failAll {
		return fmt.Errorf("accept failed")
	}
	return nil
}

func (e *fakeEngine) AddCandidate(peerID string, candidate json.RawMessage) error {
	e.calls = append(e.calls, engineCall{"candidate", peerID, string(candidate)})
	return nil
}

func (e *fakeEngine) Close(peerID string) {
	e.calls = append(e.calls, engineCall{"close", peerID, ""})
}

func (e *fakeEngine) ops(op string) []engineCall {
	var out []engineCall
	for _, c := range e.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

type sentSignal struct {
	targetID string
	payload  SignalPayload
}

func newTestMesh() (*Mesh, *fakeEngine, *[]sentSignal) {
	engine := &fakeEngine{}
	sent := &[]sentSignal{}
	mesh := NewMesh(engine, func(targetID string, payload SignalPayload) {
		*sent = append(*sent, sentSignal{targetID, payload})
	})
	return mesh, engine, sent
}

type fakeTrack struct {
	kind    string
	stopped int
}

func (t *fakeTrack) Kind() string { return t.kind }
func (t *fakeTrack) Stop()        { t.stopped++ }

func TestHandlePeerListOffersToEveryone(t *testing.T) {
	mesh, engine, sent := newTestMesh()
	require.NoError(t, mesh.HandlePeerList([]string{"peer-1", "peer-2"}))

	require.Len(t, *sent, 2)
	for i, id := range []string{"peer-1", "peer-2"} {
		assert.Equal(t, id, (*sent)[i].targetID)
		assert.Equal(t, KindOffer, (*sent)[i].payload.Kind)
		p, exists := mesh.Peer(id)
		require.True(t, exists)
		assert.Equal(t, Initiator, p.Role())
		assert.Equal(t, PhaseOffering, p.Phase())
	}
	assert.Len(t, engine.ops("offer"), 2)
}

func TestAnswerConnectsInitiator(t *testing.T) {
	mesh, engine, _ := newTestMesh()
	require.NoError(t, mesh.HandlePeerList([]string{"peer-1"}))

	require.NoError(t, mesh.HandleSignal("peer-1", SignalPayload{Kind: KindAnswer, Body: json.RawMessage(`{"sdp":"a"}`)}))
	p, _ := mesh.Peer("peer-1")
	assert.Equal(t, PhaseConnected, p.Phase())
	require.Len(t, engine.ops("accept"), 1)
	assert.Equal(t, `{"sdp":"a"}`, engine.ops("accept")[0].body)
}

func TestOfferCreatesResponderAndAnswers(t *testing.T) {
	mesh, engine, sent := newTestMesh()
	mesh.HandlePeerJoin("peer-1")
	p, exists := mesh.Peer("peer-1")
	require.True(t, exists)
	assert.Equal(t, Responder, p.Role())
	assert.Equal(t, PhaseNew, p.Phase())

	require.NoError(t, mesh.HandleSignal("peer-1", SignalPayload{Kind: KindOffer, Body: json.RawMessage(`{"sdp":"o"}`)}))
	assert.Equal(t, PhaseConnected, p.Phase())
	require.Len(t, *sent, 1)
	assert.Equal(t, KindAnswer, (*sent)[0].payload.Kind)
	assert.Len(t, engine.ops("answer"), 1)
}

func TestOfferBeforePeerJoinNotice(t *testing.T) {
	mesh, _, sent := newTestMesh()
	require.NoError(t, mesh.HandleSignal("peer-1", SignalPayload{Kind: KindOffer, Body: json.RawMessage(`{"sdp":"o"}`)}))
	p, exists := mesh.Peer("peer-1")
	require.True(t, exists)
	assert.Equal(t, Responder, p.Role())
	assert.Equal(t, PhaseConnected, p.Phase())
	require.Len(t, *sent, 1)
}

func TestRenegotiationRejected(t *testing.T) {
	mesh, _, _ := newTestMesh()
	offer := SignalPayload{Kind: KindOffer, Body: json.RawMessage(`{"sdp":"o"}`)}
	require.NoError(t, mesh.HandleSignal("peer-1", offer))

	err := mesh.HandleSignal("peer-1", offer)
	assert.ErrorIs(t, err, ErrRenegotiation)
	p, _ := mesh.Peer("peer-1")
	assert.Equal(t, PhaseConnected, p.Phase())
}

func TestCandidatesQueuedUntilConnectedAndDeduped(t *testing.T) {
	mesh, engine, _ := newTestMesh()
	require.NoError(t, mesh.HandlePeerList([]string{"peer-1"}))
	cand := SignalPayload{Kind: KindCandidate, Body: json.RawMessage(`{"candidate":"c1"}`)}

	// Before the answer: queued, applied once despite the duplicate.
	require.NoError(t, mesh.HandleSignal("peer-1", cand))
	require.NoError(t, mesh.HandleSignal("peer-1", cand))
	assert.Empty(t, engine.ops("candidate"))

	require.NoError(t, mesh.HandleSignal("peer-1", SignalPayload{Kind: KindAnswer, Body: json.RawMessage(`{"sdp":"a"}`)}))
	assert.Len(t, engine.ops("candidate"), 1)

	// After connected: applied immediately, duplicates still swallowed.
	cand2 := SignalPayload{Kind: KindCandidate, Body: json.RawMessage(`{"candidate":"c2"}`)}
	require.NoError(t, mesh.HandleSignal("peer-1", cand2))
	require.NoError(t, mesh.HandleSignal("peer-1", cand2))
	assert.Len(t, engine.ops("candidate"), 2)
}

func TestCandidateForUnknownPeer(t *testing.T) {
	mesh, _, _ := newTestMesh()
	err := mesh.HandleSignal("peer-9", SignalPayload{Kind: KindCandidate, Body: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, ErrUnknownPeer)
}

func TestPeerLeaveClosesRecord(t *testing.T) {
	mesh, engine, _ := newTestMesh()
	require.NoError(t, mesh.HandlePeerList([]string{"peer-1"}))

	mesh.HandlePeerLeave("peer-1")
	_, exists := mesh.Peer("peer-1")
	assert.False(t, exists)
	assert.Len(t, engine.ops("close"), 1)

	// A straggling candidate for the departed peer is a contained failure.
	err := mesh.HandleSignal("peer-1", SignalPayload{Kind: KindCandidate, Body: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, ErrUnknownPeer)
}

func TestReplaceLocalTrackKeepsPhase(t *testing.T) {
	mesh, _, _ := newTestMesh()
	camera := &fakeTrack{kind: "video"}
	mesh.AddLocalTrack(camera)
	require.NoError(t, mesh.HandlePeerList([]string{"peer-1"}))
	require.NoError(t, mesh.HandleSignal("peer-1", SignalPayload{Kind: KindAnswer, Body: json.RawMessage(`{"sdp":"a"}`)}))

	screen := &fakeTrack{kind: "video"}
	mesh.ReplaceLocalTrack(screen)

	p, _ := mesh.Peer("peer-1")
	assert.Equal(t, PhaseConnected, p.Phase(), "track substitution must not renegotiate")
	assert.Equal(t, 1, camera.stopped)
	assert.Equal(t, 0, screen.stopped)
}

func TestCloseStopsLocalTracks(t *testing.T) {
	mesh, engine, _ := newTestMesh()
	camera := &fakeTrack{kind: "video"}
	mic := &fakeTrack{kind: "audio"}
	mesh.AddLocalTrack(camera)
	mesh.AddLocalTrack(mic)
	require.NoError(t, mesh.HandlePeerList([]string{"peer-1", "peer-2"}))

	mesh.Close()
	assert.Equal(t, 1, camera.stopped)
	assert.Equal(t, 1, mic.stopped)
	assert.Len(t, engine.ops("close"), 2)
	_, exists := mesh.Peer("peer-1")
	assert.False(t, exists)
}

func TestFailedOfferClosesPeer(t *testing.T) {
	engine := &fakeEngine{failAll: true}
	mesh := NewMesh(engine, func(string, SignalPayload) {})
	err := mesh.HandlePeerList([]string{"peer-1"})
	require.Error(t, err)
	p, exists := mesh.Peer("peer-1")
	require.True(t, exists)
	assert.Equal(t, PhaseClosed, p.Phase())
}
