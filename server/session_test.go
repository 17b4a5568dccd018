// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jcodagnone/landing/geocode"
	"github.com/jcodagnone/landing/suggest"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialSession(t *testing.T, g geocode.Geocoder) (*websocket.Conn, *Server) {
	t.Helper()

	router, s := setupServerTest(t, g)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/address"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, s
}

// readUntil reads messages until match accepts one.
func readUntil(t *testing.T, conn *websocket.Conn, match func(ServerMessage) bool) ServerMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	for {
		var m ServerMessage
		require.NoError(t, conn.ReadJSON(&m))

		if match(m) {
			return m
		}
	}
}

func visibleState(m ServerMessage) bool {
	return m.Type == MessageState && m.State.Visible
}

func TestSessionInitialState(t *testing.T) {
	conn, _ := dialSession(t, &stubGeocoder{})

	m := readUntil(t, conn, func(m ServerMessage) bool { return true })
	require.Equal(t, MessageState, m.Type)
	assert.Equal(t, suggest.State{}, *m.State)
}

func TestSessionSuggestAndSelect(t *testing.T) {
	g := &stubGeocoder{results: []geocode.Suggestion{springfield}}
	conn, _ := dialSession(t, g)

	for _, text := range []string{"1", "12", "123", "123 Main"} {
		require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageText, Value: text}))
	}

	m := readUntil(t, conn, func(m ServerMessage) bool {
		return visibleState(m) && m.State.Text == "123 Main"
	})
	assert.Equal(t, []geocode.Suggestion{springfield}, m.State.Suggestions)
	require.Eventually(t, func() bool {
		q := g.Queries()

		return len(q) > 0 && q[len(q)-1] == "123 Main"
	}, time.Second, 5*time.Millisecond)
	assert.NotContains(t, g.Queries(), "12")

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageBlur}))
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageSelect, Index: 0}))

	m = readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MessageSelection })
	assert.Equal(t, suggest.Selection{Address: "123 Main St", City: "Springfield", State: "IL", Postal: "62704"}, *m.Selection)
}

func TestSessionFocusAfterBlur(t *testing.T) {
	g := &stubGeocoder{results: []geocode.Suggestion{springfield}}
	conn, _ := dialSession(t, g)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageText, Value: "123 Main"}))
	readUntil(t, conn, visibleState)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageBlur}))
	m := readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MessageState })
	assert.False(t, m.State.Visible)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageFocus}))
	m = readUntil(t, conn, visibleState)
	assert.Len(t, m.State.Suggestions, 1)
}

func TestSessionErrors(t *testing.T) {
	conn, _ := dialSession(t, &stubGeocoder{})

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	m := readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MessageError })
	assert.Equal(t, "malformed message", m.Error)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "paste"}))
	m = readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MessageError })
	assert.Equal(t, "unknown message type", m.Error)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageSelect, Index: 3}))
	m = readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MessageError })
	assert.Equal(t, "no such suggestion", m.Error)
}

func TestSessionGauge(t *testing.T) {
	conn, s := dialSession(t, &stubGeocoder{})
	readUntil(t, conn, func(m ServerMessage) bool { return true })

	assert.InDelta(t, 1, testutil.ToFloat64(s.sessions), 0)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(s.sessions) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSessionPushCoalescesStates(t *testing.T) {
	sess := &session{notify: make(chan struct{}, 1)}

	sess.pushState(suggest.State{Version: 1})
	sess.pushState(suggest.State{Version: 2})
	sess.push(ServerMessage{Type: MessageSelection, Selection: &suggest.Selection{Address: "a"}})
	sess.pushState(suggest.State{Version: 3})
	sess.pushState(suggest.State{Version: 4})

	require.Len(t, sess.queue, 3)
	assert.Equal(t, uint64(2), sess.queue[0].State.Version)
	assert.Equal(t, MessageSelection, sess.queue[1].Type)
	assert.Equal(t, uint64(4), sess.queue[2].State.Version)
	assert.Len(t, sess.notify, 1)
}
