package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"

	game "github.com/christophrus/rummikub-tracker/internal/game"
	util "github.com/christophrus/rummikub-tracker/internal/util"
)

// wsMessage is one push to a connected display. State messages carry the
// full snapshot; audio messages carry a cue string the client decodes
// (tick, turn chime, fanfare, or "speak|<locale>|<text>").
type wsMessage struct {
	Type  string         `json:"type"`
	State *game.Snapshot `json:"state,omitempty"`
	Cue   string         `json:"cue,omitempty"`
}

// WSHandler streams state changes and audio cues to a display client.
// The connection is one-way: clients mutate through the HTTP routes and
// only listen here.
func (e *Env) WSHandler(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		// Displays join from other devices via the QR-shared LAN address,
		// so the Origin host never matches ours.
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		util.LogWarn("WebSocket accept failed: %v", err)
		return
	}
	defer conn.CloseNow()

	// CloseRead surfaces client disconnects through ctx while discarding
	// anything the client sends.
	ctx := conn.CloseRead(c.Request.Context())

	events := e.Events.Subscribe()
	defer e.Events.Unsubscribe(events)

	util.LogInfo("Display connected from %s", c.ClientIP())
	if err := e.writeState(ctx, conn); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Display from %s disconnected", c.ClientIP())
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			var err error
			if strings.HasPrefix(ev, "audio:") {
				err = e.write(ctx, conn, wsMessage{Type: "audio", Cue: strings.TrimPrefix(ev, "audio:")})
			} else {
				err = e.writeState(ctx, conn)
			}
			if err != nil {
				return
			}
		}
	}
}

func (e *Env) writeState(ctx context.Context, conn *websocket.Conn) error {
	snap := e.Manager.Snapshot()
	return e.write(ctx, conn, wsMessage{Type: "state", State: &snap})
}

// write bounds each push so one stalled client cannot back up the event
// loop for the rest.
func (e *Env) write(ctx context.Context, conn *websocket.Conn, msg wsMessage) error {
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return wsjson.Write(writeCtx, conn, msg)
}
