package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	MsgTypeJoinRoom     = 101
	MsgTypeCreateRoom   = 103
	MsgTypePlayerAction = 202
)

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, data []byte) error {
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func sendJSON(c *websocket.Conn, msgID uint16, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return send(c, msgID, data)
}

// parseAction turns a console command into a player action payload.
//
//	roll | end | accept | decline
//	village <tile> <slot> | city <tile> <slot> | road <edge>
//	tile <tile> | steal <victim> <resource>
//	drop <res>=<n> [...] | trade <offer res>=<n>... for <request res>=<n>...
//	buy | play <card>
func parseAction(fields []string) (map[string]interface{}, bool) {
	switch fields[0] {
	case "roll":
		return map[string]interface{}{"type": "roll_dice"}, true
	case "end":
		return map[string]interface{}{"type": "end_turn"}, true
	case "accept":
		return map[string]interface{}{"type": "accept_trade"}, true
	case "decline":
		return map[string]interface{}{"type": "decline_trade"}, true
	case "village", "city":
		if len(fields) != 3 {
			return nil, false
		}
		tile, err1 := strconv.Atoi(fields[1])
		slot, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil {
			return nil, false
		}
		return map[string]interface{}{
			"type": "place_building", "building": fields[0],
			"tile": tile, "slot": slot,
		}, true
	case "road":
		if len(fields) != 2 {
			return nil, false
		}
		return map[string]interface{}{
			"type": "place_building", "building": "road", "edge": fields[1],
		}, true
	case "tile":
		if len(fields) != 2 {
			return nil, false
		}
		tile, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, false
		}
		return map[string]interface{}{"type": "select_tile", "tile": tile}, true
	case "steal":
		if len(fields) != 3 {
			return nil, false
		}
		return map[string]interface{}{
			"type": "select_card", "victim": fields[1], "resource": fields[2],
		}, true
	case "drop":
		cards, ok := parseCounts(fields[1:])
		if !ok {
			return nil, false
		}
		return map[string]interface{}{"type": "drop_cards", "cards": cards}, true
	case "trade":
		rest := fields[1:]
		sep := -1
		for i, f := range rest {
			if f == "for" {
				sep = i
				break
			}
		}
		if sep < 0 {
			return nil, false
		}
		offer, ok1 := parseCounts(rest[:sep])
		request, ok2 := parseCounts(rest[sep+1:])
		if !ok1 || !ok2 {
			return nil, false
		}
		return map[string]interface{}{
			"type": "offer_trade", "offer": offer, "request": request,
		}, true
	case "buy":
		return map[string]interface{}{"type": "buy_development_card"}, true
	case "play":
		if len(fields) != 2 {
			return nil, false
		}
		return map[string]interface{}{"type": "play_development_card", "card": fields[1]}, true
	}
	return nil, false
}

// parseCounts parses "lumber=2 ore=1" style pairs.
func parseCounts(fields []string) (map[string]int, bool) {
	counts := make(map[string]int)
	for _, f := range fields {
		parts := strings.SplitN(f, "=", 2)
		if len(parts) != 2 {
			return nil, false
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 0 {
			return nil, false
		}
		counts[parts[0]] = n
	}
	return counts, len(counts) > 0
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]
			log.Printf("<- RECV (ID: %d): %s", msgID, string(data))
		}
	}()

	name := "player"
	if len(os.Args) > 1 {
		name = os.Args[1]
	}

	if len(os.Args) > 2 {
		log.Printf("Joining room %s as %s...", os.Args[2], name)
		sendJSON(c, MsgTypeJoinRoom, map[string]string{"room_id": os.Args[2], "player_name": name})
	} else {
		log.Printf("Creating room as %s...", name)
		sendJSON(c, MsgTypeCreateRoom, map[string]string{"player_name": name})
	}

	log.Println("Client started. Commands: roll, end, village <tile> <slot>, road <edge>, " +
		"tile <n>, steal <victim> <res>, drop <res>=<n>..., trade <res>=<n>... for <res>=<n>..., " +
		"accept, decline, buy, play <card>")

	// Write loop
	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(strings.TrimSpace(text))
			if len(fields) == 0 {
				continue
			}

			action, ok := parseAction(fields)
			if !ok {
				log.Printf("Unrecognized command: %s", text)
				continue
			}
			if err := sendJSON(c, MsgTypePlayerAction, action); err != nil {
				log.Println("Write error:", err)
				return
			}
			log.Printf("-> SENT: %s action", fields[0])
		}
	}
}
