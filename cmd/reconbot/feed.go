package main

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lealex262/recon"
	"github.com/notnil/chess"
	"github.com/rs/zerolog"
)

// turn is what the feed sends after every half move.
type turn struct {
	Game    int               `json:"game"`
	Turn    int               `json:"turn"`
	ToMove  string            `json:"to_move"`
	Truth   string            `json:"truth"`
	Beliefs map[string]string `json:"beliefs,omitempty"`
	Ended   bool              `json:"ended"`
	Winner  string            `json:"winner,omitempty"`
}

var upgrader = websocket.Upgrader{} // use default options

// Feed is an OutputEncoder that sends every turn as JSON to each connected websocket client.
// Clients that fall behind miss turns.
type Feed struct {
	sync.Mutex
	clients map[uuid.UUID]chan []byte
	logger  zerolog.Logger
}

// NewFeed creates a Feed.
func NewFeed(logger zerolog.Logger) *Feed {
	return &Feed{
		clients: make(map[uuid.UUID]chan []byte),
		logger:  logger.With().Str("component", "feed").Logger(),
	}
}

func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn().Err(err).Msg("upgrade")
		return
	}
	defer c.Close()

	id := uuid.New()
	ch := make(chan []byte, 64)
	f.Lock()
	f.clients[id] = ch
	f.Unlock()
	defer func() {
		f.Lock()
		delete(f.clients, id)
		f.Unlock()
	}()
	f.logger.Info().Str("client", id.String()).Msg("connected")

	for {
		select {
		case b := <-ch:
			if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
				f.logger.Info().Err(err).Str("client", id.String()).Msg("write")
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

// Encode a game
func (f *Feed) Encode(ms recon.MetaState) error {
	t := turn{
		Game:   ms.GameNumber(),
		Turn:   ms.Turn(),
		ToMove: ms.ToMove().Name(),
		Truth:  ms.Truth().FEN(ms.ToMove()),
	}
	for _, c := range []chess.Color{chess.White, chess.Black} {
		if p, ok := ms.View(c); ok {
			if t.Beliefs == nil {
				t.Beliefs = make(map[string]string)
			}
			t.Beliefs[c.Name()] = p.FEN(ms.ToMove())
		}
	}
	if ended, winner := ms.Ended(); ended {
		t.Ended = true
		t.Winner = winner.Name()
	}
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}

	f.Lock()
	defer f.Unlock()
	for id, ch := range f.clients {
		select {
		case ch <- b:
		default:
			f.logger.Debug().Str("client", id.String()).Msg("client is behind, dropping turn")
		}
	}
	return nil
}

// Flush ...
func (f *Feed) Flush() error { return nil }
