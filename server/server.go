package server

import (
	"encoding/json"
	"net/http"
	"net/rpc"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/virugamacoder/secret-number-survivor/broadcast"
	"github.com/virugamacoder/secret-number-survivor/logger"
	"github.com/virugamacoder/secret-number-survivor/models"
	"github.com/virugamacoder/secret-number-survivor/monitor"
	"github.com/virugamacoder/secret-number-survivor/network"
	"github.com/virugamacoder/secret-number-survivor/room"
	adminrpc "github.com/virugamacoder/secret-number-survivor/rpc"
	"github.com/virugamacoder/secret-number-survivor/services"
	"github.com/virugamacoder/secret-number-survivor/session"
)

// GameServer is the transport layer: it owns the WebSocket endpoint,
// decodes packets into engine commands, unicasts errors back to the
// offending connection, and broadcasts state changes to the room. The
// engine itself never touches a socket.
type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	history        *services.HistoryService
	monitor        *monitor.Monitor
	rpcServer      *adminrpc.Server
	shutdownChan   chan struct{}
}

func NewGameServer(addr, rpcAddr string, rooms *room.Manager, history *services.HistoryService, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		addr:           addr,
		roomManager:    rooms,
		sessionManager: session.NewManager(),
		history:        history,
		monitor:        mon,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.broadcaster = broadcast.NewRoomBroadcaster(s.sessionManager)

	// Grace-timer expiries re-enter through PlayerRemoved.
	rooms.SetNotifier(s)

	rpcServer, err := adminrpc.NewServer(rpcAddr)
	if err != nil {
		logger.Log.Fatalf("Failed to create admin RPC server: %v", err)
	}
	s.rpcServer = rpcServer
	rpc.Register(adminrpc.NewAdminService(rooms, s.sessionManager, history))

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		if sess.RoomCode() != "" {
			// The seat survives for the grace period; a rejoin on a
			// fresh connection reclaims it.
			s.roomManager.Disconnect(sess.GetID())
		}
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	if packet.MsgID == network.MsgTypeHeartbeat {
		sess.LastActive = time.Now()
		return
	}

	start := time.Now()
	s.monitor.IncCommands()
	defer func() {
		s.monitor.ObserveCommandLatency(time.Since(start))
	}()

	switch packet.MsgID {
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess, packet)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeRejoinRoom:
		s.handleRejoinRoom(sess, packet)
	case network.MsgTypeSetReady:
		s.handleSetReady(sess, packet)
	case network.MsgTypeStartGame:
		s.handleStartGame(sess, packet)
	case network.MsgTypeEliminate:
		s.handleEliminate(sess, packet)
	default:
		logger.Log.Infof("Unknown message type %d from session %s", packet.MsgID, sess.GetID())
	}
}

func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) {
	var req models.CreateRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, room.ErrInvalidValue)
		return
	}

	r, err := s.roomManager.CreateRoom(sess.GetID(), req.PlayerName, req.MinValue, req.MaxValue)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	sess.SetName(req.PlayerName)
	sess.SetRoomCode(r.Code)
	s.monitor.SetActiveRooms(s.roomManager.RoomCount())

	logger.Log.Infof("Session %s created room %s", sess.GetID(), r.Code)
	s.unicastWelcome(sess, network.MsgTypeRoomCreated, r)
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req models.JoinRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, room.ErrInvalidValue)
		return
	}

	r, _, err := s.roomManager.JoinRoom(req.RoomCode, sess.GetID(), req.PlayerName)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	sess.SetName(req.PlayerName)
	sess.SetRoomCode(r.Code)

	logger.Log.Infof("Session %s joined room %s", sess.GetID(), r.Code)
	s.unicastWelcome(sess, network.MsgTypeRoomJoined, r)
	s.broadcastPlayers(r, network.MsgTypePlayersChanged)
}

func (s *GameServer) handleRejoinRoom(sess *session.Session, packet *network.Packet) {
	var req models.RejoinRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, room.ErrInvalidValue)
		return
	}

	r, p, err := s.roomManager.RejoinRoom(req.RoomCode, sess.GetID(), req.PlayerName, req.RejoinToken)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	sess.SetName(p.Name)
	sess.SetRoomCode(r.Code)

	logger.Log.Infof("Session %s rejoined room %s as %s", sess.GetID(), r.Code, p.Name)
	s.unicastWelcome(sess, network.MsgTypeRoomRejoined, r)
	s.broadcastPlayers(r, network.MsgTypePlayersChanged)
}

func (s *GameServer) handleSetReady(sess *session.Session, packet *network.Packet) {
	var req models.SetReadyRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, room.ErrInvalidValue)
		return
	}

	// The parse boundary: a secret that is not a number never reaches
	// the engine.
	secret, err := strconv.Atoi(req.SecretValue)
	if err != nil {
		s.sendError(sess, room.ErrInvalidValue)
		return
	}

	r, err := s.roomManager.SetReady(req.RoomCode, sess.GetID(), secret)
	if err != nil {
		s.sendError(sess, err)
		return
	}
	if r == nil {
		// Unknown room or player: silent no-op by contract.
		return
	}

	s.broadcastPlayers(r, network.MsgTypeReadyChanged)
}

func (s *GameServer) handleStartGame(sess *session.Session, packet *network.Packet) {
	var req models.StartGameRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, room.ErrInvalidValue)
		return
	}

	r, err := s.roomManager.StartGame(req.RoomCode)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	logger.Log.Infof("Room %s started with %d players", r.Code, r.PlayerCount())
	view := models.NewRoomView(r.Snapshot())
	s.broadcastJSON(r.Code, network.MsgTypeGameStarted, view)
}

func (s *GameServer) handleEliminate(sess *session.Session, packet *network.Packet) {
	var req models.EliminateRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, room.ErrInvalidValue)
		return
	}

	value, err := strconv.Atoi(req.Value)
	if err != nil {
		s.sendError(sess, room.ErrInvalidValue)
		return
	}

	r, out, err := s.roomManager.Eliminate(req.RoomCode, sess.GetID(), value)
	if err != nil {
		s.sendError(sess, err)
		return
	}
	if out == nil {
		// Unknown room or game not in play: silent no-op by contract.
		return
	}

	s.monitor.AddEliminations(len(out.Eliminated))

	result := models.EliminationResult{
		RoomCode:    r.Code,
		Value:       out.Value,
		Eliminated:  models.NewPlayerViews(out.Eliminated),
		CurrentTurn: out.CurrentTurn,
		Log:         models.NewLogEntryViews(out.Log),
	}
	s.broadcastJSON(r.Code, network.MsgTypeEliminationResult, result)

	if out.GameOver {
		s.finishGame(r, out.Winner)
	}
}

// finishGame broadcasts the result and archives the match.
func (s *GameServer) finishGame(r *room.Room, winner *room.PlayerSnapshot) {
	over := models.GameOver{RoomCode: r.Code}
	if winner != nil {
		w := models.NewPlayerView(*winner)
		over.Winner = &w
	}
	s.broadcastJSON(r.Code, network.MsgTypeGameOver, over)
	s.monitor.IncGamesFinished()

	if err := s.history.RecordFinishedGame(r.Snapshot()); err != nil {
		logger.Log.Errorf("Failed to archive game in room %s: %v", r.Code, err)
	}
}

// PlayerRemoved implements room.Notifier. It runs when a disconnect grace
// timer expires and the seat is reclaimed by nobody.
func (s *GameServer) PlayerRemoved(dep *room.Departure) {
	logger.Log.Infof("Player %s removed from room %s after grace period", dep.Player.Name, dep.RoomCode)
	s.monitor.SetActiveRooms(s.roomManager.RoomCount())

	if dep.RoomDeleted {
		s.broadcastJSON(dep.RoomCode, network.MsgTypeRoomDeleted, models.RoomDeleted{RoomCode: dep.RoomCode})
		return
	}

	s.broadcastPlayers(dep.Room, network.MsgTypePlayerLeft)

	if dep.GameOver {
		s.finishGame(dep.Room, dep.Winner)
	}
}

func (s *GameServer) unicastWelcome(sess *session.Session, msgID uint16, r *room.Room) {
	welcome := models.RoomWelcome{
		Room:     models.NewRoomView(r.Snapshot()),
		PlayerID: sess.GetID(),
	}
	if p, ok := r.FindPlayer(sess.GetID()); ok {
		welcome.RejoinToken = p.RejoinToken
	}

	data, err := json.Marshal(welcome)
	if err != nil {
		logger.Log.Errorf("Failed to marshal welcome for session %s: %v", sess.GetID(), err)
		return
	}
	if err := sess.Send(msgID, data); err != nil {
		logger.Log.Warnf("Failed to send welcome to session %s: %v", sess.GetID(), err)
	}
}

func (s *GameServer) broadcastPlayers(r *room.Room, msgID uint16) {
	snap := r.Snapshot()
	s.broadcastJSON(r.Code, msgID, models.PlayersChanged{
		RoomCode: r.Code,
		Players:  models.NewPlayerViews(snap.Players),
	})
}

func (s *GameServer) broadcastJSON(roomCode string, msgID uint16, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Log.Errorf("Failed to marshal broadcast %d for room %s: %v", msgID, roomCode, err)
		return
	}
	if err := s.broadcaster.BroadcastToRoom(roomCode, msgID, data); err != nil {
		logger.Log.Warnf("Broadcast %d to room %s failed: %v", msgID, roomCode, err)
	}
}

// sendError reports a failed command to the offending connection only;
// errors are never broadcast room-wide.
func (s *GameServer) sendError(sess *session.Session, err error) {
	data, merr := json.Marshal(models.CommandError{Message: err.Error()})
	if merr != nil {
		return
	}
	if serr := s.broadcaster.Unicast(sess.GetID(), network.MsgTypeCommandError, data); serr != nil {
		logger.Log.Warnf("Failed to send error to session %s: %v", sess.GetID(), serr)
	}
}
