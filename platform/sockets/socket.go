package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/DedS3t/tycoon-backend/app/engine"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const requestTimeout = 5 * time.Second

// Transport carries engine events to socket.io clients. Every game is a room
// and every player has a private room named player.<id>.
type Transport struct {
	server  *socketio.Server
	manager *engine.Manager
	secret  []byte
	log     *logrus.Entry
}

func NewTransport(manager *engine.Manager, secret string) (*Transport, error) {
	server, err := socketio.NewServer(nil)
	if err != nil {
		return nil, err
	}
	t := &Transport{
		server:  server,
		manager: manager,
		secret:  []byte(secret),
		log:     logrus.WithField("component", "sockets"),
	}
	t.bind()
	return t, nil
}

func playerRoom(id string) string {
	return "player." + id
}

func (t *Transport) Broadcast(gameId, event string, payload interface{}) {
	t.emit(gameId, event, payload)
}

func (t *Transport) Send(playerId, event string, payload interface{}) {
	t.emit(playerRoom(playerId), event, payload)
}

// Payloads travel as JSON strings, like the inbound ones.
func (t *Transport) encode(event string, payload interface{}) (string, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		t.log.WithError(err).WithField("event", event).Error("encode payload")
		return "", false
	}
	return string(data), true
}

func (t *Transport) emit(room, event string, payload interface{}) {
	if data, ok := t.encode(event, payload); ok {
		t.server.BroadcastToRoom("/", room, event, data)
	}
}

func (t *Transport) emitTo(s socketio.Conn, event string, payload interface{}) {
	if data, ok := t.encode(event, payload); ok {
		s.Emit(event, data)
	}
}

func state(s socketio.Conn) connState {
	st, _ := s.Context().(connState)
	return st
}

func (t *Transport) reply(s socketio.Conn, event string, err error) {
	msg, ok := failure(err)
	if !ok {
		return
	}
	if msg.Code == engine.CodeCommitFailed {
		t.log.WithError(err).WithField("event", event).Error("action failed")
	}
	t.emitTo(s, engine.EventError, msg)
}

func (t *Transport) bind() {
	t.server.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(connState{})
		return nil
	})

	t.server.OnEvent("/", EventJoinLobby, func(s socketio.Conn, msg string) {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		st, joined, err := t.join(ctx, []byte(msg))
		if err != nil {
			t.reply(s, EventJoinLobby, err)
			return
		}
		s.LeaveAll()
		s.Join(st.GameId)
		s.Join(playerRoom(st.PlayerId))
		s.SetContext(st)
		t.emitTo(s, EventJoinedLobby, joined)
		t.log.WithFields(logrus.Fields{"game": st.GameId, "player": st.PlayerId}).Info("joined lobby")
	})

	for event := range handlers {
		event := event
		t.server.OnEvent("/", event, func(s socketio.Conn, msg string) {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			st := state(s)
			if err := t.dispatch(ctx, st, event, []byte(msg)); err != nil {
				t.reply(s, event, err)
				return
			}
			if event == EventQuitGame {
				s.LeaveAll()
				s.SetContext(connState{})
			}
		})
	}

	t.server.OnError("/", func(s socketio.Conn, e error) {
		t.log.WithError(e).Warn("socket error")
	})

	t.server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		st := state(s)
		s.LeaveAll()
		if st.PlayerId == "" {
			return
		}
		sess, ok := t.manager.Get(st.GameId)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := sess.Disconnect(ctx, st.PlayerId); err != nil {
			t.log.WithError(err).WithFields(logrus.Fields{"game": st.GameId, "player": st.PlayerId}).
				Warn("disconnect")
		}
	})
}

// Serve blocks serving socket.io on addr with CORS for origin.
func (t *Transport) Serve(addr, origin string) error {
	go t.server.Serve()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{origin},
		AllowCredentials: true,
	})

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", t.server)
	t.log.WithField("addr", addr).Info("socket.io listening")
	return http.ListenAndServe(addr, c.Handler(mux))
}

func (t *Transport) Close() error {
	return t.server.Close()
}
