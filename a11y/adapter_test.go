package a11y

import (
	"testing"

	"github.com/bnema/wayloop/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSink struct {
	events []Event
}

func (s *sliceSink) PushAccessibility(ev Event) {
	s.events = append(s.events, ev)
}

type recordingBridge struct {
	attached map[window.ID]*Handler
	updates  []TreeUpdate
	detached []window.ID
}

func (b *recordingBridge) Attach(id window.ID, h *Handler) {
	if b.attached == nil {
		b.attached = make(map[window.ID]*Handler)
	}
	b.attached[id] = h
}

func (b *recordingBridge) Update(_ window.ID, update TreeUpdate) {
	b.updates = append(b.updates, update)
}

func (b *recordingBridge) Detach(id window.ID) {
	b.detached = append(b.detached, id)
}

func TestHandlerQueuesEvents(t *testing.T) {
	sink := &sliceSink{}
	id := window.NewID(3, 1)
	h := NewHandler(id, sink)

	h.RequestInitialTree()
	h.DoAction(ActionRequest{Action: ActionClick, Target: 7})
	h.Deactivate()

	require.Len(t, sink.events, 3)
	assert.Equal(t, Activate, sink.events[0].Kind)
	assert.Equal(t, ActionRequested, sink.events[1].Kind)
	assert.Equal(t, NodeID(7), sink.events[1].Request.Target)
	assert.Equal(t, Deactivate, sink.events[2].Kind)
	for _, ev := range sink.events {
		assert.Equal(t, id, ev.Window)
	}
	assert.Equal(t, "action click on node 7", sink.events[1].String())
}

func TestAdapterOnlyUpdatesWhileActive(t *testing.T) {
	bridge := &recordingBridge{}
	id := window.NewID(3, 1)
	a := NewAdapter(id, &sliceSink{}, bridge)
	require.Same(t, a.Handler(), bridge.attached[id])

	built := 0
	build := func() TreeUpdate {
		built++
		return TreeUpdate{Root: 1, Nodes: []Node{{ID: 1, Role: "window", Name: "demo"}}}
	}

	assert.False(t, a.UpdateIfActive(build))
	assert.Zero(t, built)

	a.SetActive(true)
	assert.True(t, a.UpdateIfActive(build))
	assert.Equal(t, 1, built)
	require.Len(t, bridge.updates, 1)
	last, ok := a.LastUpdate()
	require.True(t, ok)
	assert.Equal(t, NodeID(1), last.Root)

	a.SetActive(false)
	_, ok = a.LastUpdate()
	assert.False(t, ok)

	a.Close()
	assert.Equal(t, []window.ID{id}, bridge.detached)
}

func TestAdapterWithoutBridge(t *testing.T) {
	a := NewAdapter(window.NewID(1, 1), &sliceSink{}, nil)
	a.SetActive(true)
	assert.True(t, a.UpdateIfActive(func() TreeUpdate { return TreeUpdate{} }))
	a.Close()
	assert.False(t, a.Active())
}
