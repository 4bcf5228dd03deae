// A line-oriented test client. Connect, then drive a game by hand:
//
//	create <name> [min] [max]
//	join <code> <name>
//	rejoin <code> <name> [token]
//	ready <code> <secret>
//	start <code>
//	call <code> <value>
package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"flag"
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
	MsgTypeCreateRoom = 101
	MsgTypeJoinRoom   = 102
	MsgTypeRejoinRoom = 103
	MsgTypeSetReady   = 104
	MsgTypeStartGame  = 105
	MsgTypeEliminate  = 106
)

var outcomeNames = map[uint16]string{
	201: "RoomCreated",
	202: "RoomJoined",
	203: "RoomRejoined",
	204: "PlayersChanged",
	205: "ReadyChanged",
	206: "GameStarted",
	207: "EliminationResult",
	208: "GameOver",
	209: "PlayerLeft",
	210: "RoomDeleted",
	211: "CommandError",
}

// send frames and sends one packet to the server.
func send(c *websocket.Conn, msgID uint16, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func parseCommand(line string) (uint16, interface{}, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, nil, false
	}

	switch fields[0] {
	case "create":
		if len(fields) < 2 {
			log.Println("usage: create <name> [min] [max]")
			return 0, nil, false
		}
		payload := map[string]interface{}{"player_name": fields[1]}
		if len(fields) >= 4 {
			min, err1 := strconv.Atoi(fields[2])
			max, err2 := strconv.Atoi(fields[3])
			if err1 != nil || err2 != nil {
				log.Println("min and max must be numbers")
				return 0, nil, false
			}
			payload["min_value"] = min
			payload["max_value"] = max
		}
		return MsgTypeCreateRoom, payload, true
	case "join":
		if len(fields) < 3 {
			log.Println("usage: join <code> <name>")
			return 0, nil, false
		}
		return MsgTypeJoinRoom, map[string]string{"room_code": fields[1], "player_name": fields[2]}, true
	case "rejoin":
		if len(fields) < 3 {
			log.Println("usage: rejoin <code> <name> [token]")
			return 0, nil, false
		}
		payload := map[string]string{"room_code": fields[1], "player_name": fields[2]}
		if len(fields) >= 4 {
			payload["rejoin_token"] = fields[3]
		}
		return MsgTypeRejoinRoom, payload, true
	case "ready":
		if len(fields) < 3 {
			log.Println("usage: ready <code> <secret>")
			return 0, nil, false
		}
		return MsgTypeSetReady, map[string]string{"room_code": fields[1], "secret_value": fields[2]}, true
	case "start":
		if len(fields) < 2 {
			log.Println("usage: start <code>")
			return 0, nil, false
		}
		return MsgTypeStartGame, map[string]string{"room_code": fields[1]}, true
	case "call":
		if len(fields) < 3 {
			log.Println("usage: call <code> <value>")
			return 0, nil, false
		}
		return MsgTypeEliminate, map[string]string{"room_code": fields[1], "value": fields[2]}, true
	default:
		log.Printf("Unknown command %q", fields[0])
		return 0, nil, false
	}
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop.
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
			name := outcomeNames[msgID]
			if name == "" {
				name = "Unknown"
			}
			log.Printf("<- %s: %s", name, string(data))
		}
	}()

	go func() {
		<-interrupt
		log.Println("Interrupt received, closing connection.")
		err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err != nil {
			log.Println("Write close error:", err)
		}
		select {
		case <-done:
		case <-time.After(time.Second):
		}
		os.Exit(0)
	}()

	log.Println("Client started. Type a command, e.g. 'create alice'.")

	reader := bufio.NewScanner(os.Stdin)
	for reader.Scan() {
		msgID, payload, ok := parseCommand(reader.Text())
		if !ok {
			continue
		}
		if err := send(c, msgID, payload); err != nil {
			log.Println("Write error:", err)
			return
		}
	}
}
