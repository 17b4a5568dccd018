// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jcodagnone/landing/suggest"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

// Message types exchanged over an address session.
const (
	MessageText      = "text"
	MessageFocus     = "focus"
	MessageBlur      = "blur"
	MessageSelect    = "select"
	MessageState     = "state"
	MessageSelection = "selection"
	MessageError     = "error"
)

// ClientMessage is an input event sent by the page.
type ClientMessage struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
	Index int    `json:"index,omitempty"`
}

// ServerMessage is pushed to the page.
type ServerMessage struct {
	Type      string             `json:"type"`
	State     *suggest.State     `json:"state,omitempty"`
	Selection *suggest.Selection `json:"selection,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// session binds one websocket to one suggestion engine.
type session struct {
	id     string
	conn   *websocket.Conn
	engine *suggest.Engine

	mu     sync.Mutex
	queue  []ServerMessage
	notify chan struct{}
	done   chan struct{}
}

func (s *Server) addressSession(ctx *gin.Context) {
	conn, err := s.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Printf("⚠️ upgrading address session: %v", err)

		return
	}

	sess := &session{
		id:     uuid.NewString(),
		conn:   conn,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	options := s.engine
	options.OnChange = sess.pushState
	options.OnLookup = sess.logLookup
	sess.engine = suggest.NewEngine(s.geocoder, &options)

	s.sessions.Inc()
	defer s.sessions.Dec()

	log.Printf("🔌 address session %s opened", sess.id)
	sess.run()
	log.Printf("🔌 address session %s closed", sess.id)
}

func (sess *session) run() {
	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		sess.writeMessages()
	}()

	sess.pushState(sess.engine.State())
	sess.readMessages()

	sess.engine.Close()
	close(sess.done)
	wg.Wait()
	sess.conn.Close()
}

// push queues m for the writer. Consecutive states collapse into the
// latest one, so a slow client only misses intermediate snapshots.
func (sess *session) push(m ServerMessage) {
	sess.mu.Lock()

	if n := len(sess.queue); n > 0 && m.Type == MessageState && sess.queue[n-1].Type == MessageState {
		sess.queue[n-1] = m
	} else {
		sess.queue = append(sess.queue, m)
	}

	sess.mu.Unlock()

	select {
	case sess.notify <- struct{}{}:
	default:
	}
}

func (sess *session) pushState(st suggest.State) {
	sess.push(ServerMessage{Type: MessageState, State: &st})
}

func (sess *session) logLookup(r suggest.LookupResult) {
	if r.Outcome == suggest.OutcomeFailed {
		log.Printf("⚠️ session %s: lookup %q unavailable: %v", sess.id, r.Query, r.Err)
	}
}

func (sess *session) writeMessages() {
	for {
		select {
		case <-sess.done:
			return
		case <-sess.notify:
		}

		sess.mu.Lock()
		pending := sess.queue
		sess.queue = nil
		sess.mu.Unlock()

		for _, m := range pending {
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := sess.conn.WriteJSON(m); err != nil {
				log.Printf("⚠️ session %s: writing: %v", sess.id, err)
				// unblocks the reader
				sess.conn.Close()

				return
			}
		}
	}
}

func (sess *session) readMessages() {
	sess.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) &&
				!errors.Is(err, websocket.ErrCloseSent) {
				log.Printf("session %s: reading: %v", sess.id, err)
			}

			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sess.push(ServerMessage{Type: MessageError, Error: "malformed message"})

			continue
		}

		sess.handle(msg)
	}
}

func (sess *session) handle(msg ClientMessage) {
	switch msg.Type {
	case MessageText:
		sess.engine.TextChanged(msg.Value)
	case MessageFocus:
		sess.engine.Focus()
	case MessageBlur:
		sess.engine.Blur()
	case MessageSelect:
		sel, ok := sess.engine.SelectIndex(msg.Index)
		if !ok {
			sess.push(ServerMessage{Type: MessageError, Error: "no such suggestion"})

			return
		}

		sess.push(ServerMessage{Type: MessageSelection, Selection: &sel})
	default:
		sess.push(ServerMessage{Type: MessageError, Error: "unknown message type"})
	}
}
