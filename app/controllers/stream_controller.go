package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shashiranjanraj/mandi/app/services"
	"github.com/shashiranjanraj/mandi/pkg/event"
	"github.com/shashiranjanraj/mandi/pkg/sse"
	"github.com/shashiranjanraj/mandi/pkg/ws"
)

// feedEvents is what the live admin feed relays.
var feedEvents = []string{
	services.EventCartUpdated,
	services.EventOrderUpdated,
	services.EventAdminNotification,
	services.EventSessionLogout,
	services.EventStoreChanged,
}

// StreamController serves the live feed over SSE and WebSocket. Both
// transports relay the same engine broadcasts.
type StreamController struct {
	hub *ws.Hub
}

func NewStreamController() *StreamController {
	c := &StreamController{hub: ws.NewHub()}
	go c.hub.Run()
	go c.pump()
	return c
}

// pump forwards engine broadcasts to every connected WebSocket client.
func (c *StreamController) pump() {
	signals, stop := event.Subscribe(64, feedEvents...)
	defer stop()

	for sig := range signals {
		msg, err := json.Marshal(map[string]interface{}{
			"event":   sig.Event,
			"payload": sig.Payload,
		})
		if err != nil {
			continue
		}
		c.hub.Broadcast <- msg
	}
}

// SSE streams engine broadcasts as Server-Sent Events. A heartbeat comment
// every 25 seconds keeps proxies from closing the idle connection.
func (c *StreamController) SSE(w http.ResponseWriter, r *http.Request) {
	stream := sse.New(w, r)
	if stream == nil {
		return
	}

	signals, stop := event.Subscribe(64, feedEvents...)
	defer stop()

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			stream.Comment("keepalive")
		case sig, ok := <-signals:
			if !ok {
				return
			}
			if err := stream.Send(sig.Event, sig.Payload); err != nil {
				return
			}
			if stream.IsClosed() {
				return
			}
		}
	}
}

// WS upgrades to a WebSocket and joins the broadcast hub.
func (c *StreamController) WS(w http.ResponseWriter, r *http.Request) {
	ws.Upgrade(w, r, c.hub)
}
