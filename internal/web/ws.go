package web

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Mister-sp/girr-remake-sub000/internal/relay"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsEnvelope is the inbound named-event frame. Data stays raw until the
// event is known; malformed or missing fields are tolerated, not rejected.
type wsEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// websocketHandler bridges one socket to the hub: the write goroutine
// drains the hub client's channel, the read loop dispatches register and
// obs:update envelopes. Unknown events are ignored.
func websocketHandler(hub *relay.Hub, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Debug().Err(err).Msg("websocket upgrade failed")
			return
		}

		client := hub.Connect()

		go func() {
			for msg := range client.Send() {
				if err := conn.WriteJSON(msg); err != nil {
					conn.Close()
				}
			}
			// Hub closed the channel on disconnect.
			conn.Close()
		}()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}

			var env wsEnvelope
			if err := json.Unmarshal(raw, &env); err != nil {
				continue
			}

			switch env.Event {
			case "register":
				var data struct {
					Pathname string `json:"pathname"`
				}
				// A missing or malformed pathname classifies as control.
				_ = json.Unmarshal(env.Data, &data)
				hub.Register(client, data.Pathname)
			case "obs:update":
				var payload map[string]any
				if len(env.Data) > 0 {
					_ = json.Unmarshal(env.Data, &payload)
				}
				if payload == nil {
					payload = map[string]any{}
				}
				hub.OnAirUpdate(client, payload)
			}
		}

		hub.Disconnect(client)
		conn.Close()
	}
}
