package rpc

import (
	"net"
	"net/rpc"
	"time"

	"github.com/virugamacoder/secret-number-survivor/logger"
	"github.com/virugamacoder/secret-number-survivor/models"
	"github.com/virugamacoder/secret-number-survivor/room"
	"github.com/virugamacoder/secret-number-survivor/services"
	"github.com/virugamacoder/secret-number-survivor/session"
)

// Server manages the admin RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("Admin RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("Admin RPC listener closed.")
				return
			}
			logger.Log.Errorf("Admin RPC accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping admin RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes operational queries over net/rpc: active rooms,
// server stats, archived player results.
type AdminService struct {
	rooms     *room.Manager
	sessions  *session.Manager
	history   *services.HistoryService
	startTime time.Time
}

func NewAdminService(rooms *room.Manager, sessions *session.Manager, history *services.HistoryService) *AdminService {
	return &AdminService{
		rooms:     rooms,
		sessions:  sessions,
		history:   history,
		startTime: time.Now(),
	}
}

type RoomSummary struct {
	Code        string
	Phase       string
	PlayerCount int
	Active      int
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	Rooms []RoomSummary
}

func (a *AdminService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	for _, snap := range a.rooms.Snapshots() {
		active := 0
		for _, p := range snap.Players {
			if !p.IsEliminated {
				active++
			}
		}
		reply.Rooms = append(reply.Rooms, RoomSummary{
			Code:        snap.Code,
			Phase:       string(snap.Phase),
			PlayerCount: len(snap.Players),
			Active:      active,
		})
	}
	return nil
}

type StatsArgs struct{}

type StatsReply struct {
	ActiveRooms   int
	LiveSessions  int
	UptimeSeconds float64
}

func (a *AdminService) Stats(args *StatsArgs, reply *StatsReply) error {
	reply.ActiveRooms = a.rooms.RoomCount()
	reply.LiveSessions = a.sessions.Count()
	reply.UptimeSeconds = time.Since(a.startTime).Seconds()
	return nil
}

type PlayerStatsArgs struct {
	Name string
}

type PlayerStatsReply struct {
	Stats *models.PlayerStats
}

func (a *AdminService) PlayerStats(args *PlayerStatsArgs, reply *PlayerStatsReply) error {
	stats, err := a.history.PlayerStats(args.Name)
	if err != nil {
		return err
	}
	reply.Stats = stats
	return nil
}
