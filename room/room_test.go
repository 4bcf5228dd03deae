package room

import (
	"testing"

	"github.com/virugamacoder/secret-number-survivor/state"
)

// newTestRoom builds a room with host "A" on conn-A, range 1-100.
func newTestRoom(capacity int) *Room {
	return newRoom("1234", 1, 100, capacity, "conn-A", "A")
}

// startTwoPlayerGame seats B, readies both (A=5, B=9) and starts.
func startTwoPlayerGame(t *testing.T, r *Room) {
	t.Helper()
	if _, err := r.Join("conn-B", "B"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if _, err := r.SetReady("conn-A", 5); err != nil {
		t.Fatalf("SetReady A failed: %v", err)
	}
	if _, err := r.SetReady("conn-B", 9); err != nil {
		t.Fatalf("SetReady B failed: %v", err)
	}
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
}

func TestRoom_JoinOrderIsTurnOrder(t *testing.T) {
	r := newTestRoom(20)

	r.Join("conn-B", "B")
	r.Join("conn-C", "C")

	snap := r.Snapshot()
	if len(snap.Players) != 3 {
		t.Fatalf("Expected 3 players, got %d", len(snap.Players))
	}
	for i, name := range []string{"A", "B", "C"} {
		if snap.Players[i].Name != name {
			t.Errorf("Seat %d: expected %s, got %s", i, name, snap.Players[i].Name)
		}
	}
	if !snap.Players[0].IsHost {
		t.Error("Creator should be host")
	}
	if snap.Players[1].IsHost || snap.Players[2].IsHost {
		t.Error("Joining players must not be hosts")
	}
}

func TestRoom_JoinCap(t *testing.T) {
	r := newTestRoom(20)

	// Host occupies seat one; 19 more joins fill the room.
	for i := 0; i < 19; i++ {
		if _, err := r.Join("conn", "P"); err != nil {
			t.Fatalf("Join %d failed: %v", i, err)
		}
	}
	if r.PlayerCount() != 20 {
		t.Fatalf("Expected 20 players, got %d", r.PlayerCount())
	}

	if _, err := r.Join("conn-21", "Late"); err != ErrRoomFull {
		t.Errorf("21st join: expected ErrRoomFull, got %v", err)
	}
	if r.PlayerCount() != 20 {
		t.Errorf("Player count must never exceed the cap, got %d", r.PlayerCount())
	}
}

func TestRoom_JoinAfterStart(t *testing.T) {
	r := newTestRoom(20)
	startTwoPlayerGame(t, r)

	if _, err := r.Join("conn-C", "C"); err != ErrRoomNotJoinable {
		t.Errorf("Expected ErrRoomNotJoinable, got %v", err)
	}
}

func TestRoom_SetReady_RangeValidation(t *testing.T) {
	r := newTestRoom(20)

	if _, err := r.SetReady("conn-A", 0); err != ErrInvalidValue {
		t.Errorf("Secret below range: expected ErrInvalidValue, got %v", err)
	}
	if _, err := r.SetReady("conn-A", 101); err != ErrInvalidValue {
		t.Errorf("Secret above range: expected ErrInvalidValue, got %v", err)
	}

	snap := r.Snapshot()
	if snap.Players[0].IsReady {
		t.Error("Rejected secret must not mark the player ready")
	}

	p, err := r.SetReady("conn-A", 100)
	if err != nil {
		t.Fatalf("Boundary secret should be accepted, got %v", err)
	}
	if !p.IsReady || p.Secret != 100 {
		t.Errorf("Expected ready player with secret 100, got ready=%v secret=%d", p.IsReady, p.Secret)
	}
}

func TestRoom_Start_Validations(t *testing.T) {
	r := newTestRoom(20)

	if err := r.Start(); err != ErrInsufficientPlayers {
		t.Errorf("Solo start: expected ErrInsufficientPlayers, got %v", err)
	}

	r.Join("conn-B", "B")
	r.SetReady("conn-A", 5)

	if err := r.Start(); err != ErrNotAllReady {
		t.Errorf("Unready player: expected ErrNotAllReady, got %v", err)
	}

	r.SetReady("conn-B", 9)

	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	snap := r.Snapshot()
	if snap.Phase != state.Playing {
		t.Errorf("Expected phase %q, got %q", state.Playing, snap.Phase)
	}
	if snap.CurrentTurn != 0 {
		t.Errorf("Turn should reset to seat 0, got %d", snap.CurrentTurn)
	}
	if len(snap.Log) != 0 {
		t.Errorf("Log should start empty, got %d entries", len(snap.Log))
	}
}

// The canonical two-player game: A(secret 5) calls 9, B(secret 9) falls,
// A wins. A later call is a silent no-op because the room is finished.
func TestRoom_Eliminate_WinningCall(t *testing.T) {
	r := newTestRoom(20)
	startTwoPlayerGame(t, r)

	out, err := r.Eliminate("conn-A", 9)
	if err != nil {
		t.Fatalf("Eliminate failed: %v", err)
	}
	if out == nil {
		t.Fatal("Expected an outcome")
	}
	if !out.GameOver {
		t.Error("Eliminating the only opponent should end the game")
	}
	if out.Winner == nil || out.Winner.Name != "A" {
		t.Errorf("Expected winner A, got %+v", out.Winner)
	}
	if len(out.Eliminated) != 1 || out.Eliminated[0].Name != "B" {
		t.Errorf("Expected B eliminated, got %+v", out.Eliminated)
	}

	snap := r.Snapshot()
	if snap.Phase != state.Finished {
		t.Errorf("Expected phase %q, got %q", state.Finished, snap.Phase)
	}
	if snap.Winner == nil || snap.Winner.Name != "A" {
		t.Errorf("Room winner should be A, got %+v", snap.Winner)
	}

	// Same call again: the room is no longer in play.
	out, err = r.Eliminate("conn-A", 9)
	if out != nil || err != nil {
		t.Errorf("Call after game over should be a silent no-op, got out=%+v err=%v", out, err)
	}
}

func TestRoom_Eliminate_NoMatchAdvancesTurn(t *testing.T) {
	r := newTestRoom(20)
	r.Join("conn-B", "B")
	r.Join("conn-C", "C")
	r.SetReady("conn-A", 5)
	r.SetReady("conn-B", 9)
	r.SetReady("conn-C", 13)
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	out, err := r.Eliminate("conn-A", 42)
	if err != nil {
		t.Fatalf("Eliminate failed: %v", err)
	}
	if out.GameOver {
		t.Error("A miss must not end the game")
	}
	if len(out.Eliminated) != 0 {
		t.Errorf("Expected no eliminations, got %+v", out.Eliminated)
	}
	if out.CurrentTurn != 1 {
		t.Errorf("Turn should advance to B (seat 1), got %d", out.CurrentTurn)
	}
	if len(out.Log) != 1 {
		t.Fatalf("Expected one log entry, got %d", len(out.Log))
	}
	entry := out.Log[0]
	if entry.Player != "A" || entry.Value != 42 || len(entry.Eliminated) != 0 {
		t.Errorf("Unexpected log entry: %+v", entry)
	}
	if entry.Timestamp.IsZero() {
		t.Error("Log entry should carry a timestamp")
	}
}

func TestRoom_Eliminate_SelfTargetForbidden(t *testing.T) {
	r := newTestRoom(20)
	startTwoPlayerGame(t, r)

	out, err := r.Eliminate("conn-A", 5)
	if err != ErrSelfTargetForbidden {
		t.Fatalf("Expected ErrSelfTargetForbidden, got %v", err)
	}
	if out != nil {
		t.Error("A forbidden call must produce no outcome")
	}

	snap := r.Snapshot()
	if snap.CurrentTurn != 0 {
		t.Error("A forbidden call must not advance the turn")
	}
	if len(snap.Log) != 0 {
		t.Error("A forbidden call must not be logged")
	}
}

func TestRoom_Eliminate_NotYourTurn(t *testing.T) {
	r := newTestRoom(20)
	startTwoPlayerGame(t, r)

	if _, err := r.Eliminate("conn-B", 5); err != ErrNotYourTurn {
		t.Errorf("Expected ErrNotYourTurn, got %v", err)
	}
}

// Two players sharing a secret fall to a single call.
func TestRoom_Eliminate_DuplicateSecrets(t *testing.T) {
	r := newTestRoom(20)
	r.Join("conn-B", "B")
	r.Join("conn-C", "C")
	r.SetReady("conn-A", 2)
	r.SetReady("conn-B", 7)
	r.SetReady("conn-C", 7)
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	out, err := r.Eliminate("conn-A", 7)
	if err != nil {
		t.Fatalf("Eliminate failed: %v", err)
	}
	if len(out.Eliminated) != 2 {
		t.Fatalf("Expected 2 eliminations, got %d", len(out.Eliminated))
	}
	if !out.GameOver || out.Winner == nil || out.Winner.Name != "A" {
		t.Errorf("Expected game over with winner A, got over=%v winner=%+v", out.GameOver, out.Winner)
	}

	snap := r.Snapshot()
	if len(snap.Eliminated) != 2 || snap.Eliminated[0] != "B" || snap.Eliminated[1] != "C" {
		t.Errorf("Eliminated list should record B then C, got %v", snap.Eliminated)
	}
}

func TestRoom_TurnSkipsEliminated(t *testing.T) {
	r := newTestRoom(20)
	r.Join("conn-B", "B")
	r.Join("conn-C", "C")
	r.Join("conn-D", "D")
	r.SetReady("conn-A", 1)
	r.SetReady("conn-B", 2)
	r.SetReady("conn-C", 3)
	r.SetReady("conn-D", 4)
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// A knocks out C; turn passes to B.
	out, err := r.Eliminate("conn-A", 3)
	if err != nil {
		t.Fatalf("Eliminate failed: %v", err)
	}
	if out.CurrentTurn != 1 {
		t.Fatalf("Expected turn at B (seat 1), got %d", out.CurrentTurn)
	}

	// B misses; the eliminated C is skipped and D is up.
	out, err = r.Eliminate("conn-B", 99)
	if err != nil {
		t.Fatalf("Eliminate failed: %v", err)
	}
	if out.CurrentTurn != 3 {
		t.Errorf("Expected turn to skip C and land on D (seat 3), got %d", out.CurrentTurn)
	}

	snap := r.Snapshot()
	if snap.Players[snap.CurrentTurn].IsEliminated {
		t.Error("Turn index must point at an active player")
	}
}

func TestRoom_Remove_HostPromotion(t *testing.T) {
	r := newTestRoom(20)
	r.Join("conn-B", "B")
	r.Join("conn-C", "C")

	dep, ok := r.Remove("conn-A")
	if !ok {
		t.Fatal("Remove should find the host")
	}
	if dep.RoomDeleted {
		t.Fatal("Room with remaining players must not be deleted")
	}
	if !dep.Player.IsHost || dep.Player.Name != "A" {
		t.Errorf("Departure should describe the host A, got %+v", dep.Player)
	}

	snap := r.Snapshot()
	hosts := 0
	for _, p := range snap.Players {
		if p.IsHost {
			hosts++
		}
	}
	if hosts != 1 {
		t.Fatalf("Expected exactly one host, got %d", hosts)
	}
	if !snap.Players[0].IsHost || snap.Players[0].Name != "B" {
		t.Errorf("First remaining player B should be promoted, got %+v", snap.Players[0])
	}
}

func TestRoom_Remove_LastPlayerDeletesRoom(t *testing.T) {
	r := newTestRoom(20)

	dep, ok := r.Remove("conn-A")
	if !ok {
		t.Fatal("Remove should find the only player")
	}
	if !dep.RoomDeleted {
		t.Error("Removing the last player should mark the room deleted")
	}
}

func TestRoom_Remove_UnknownConn(t *testing.T) {
	r := newTestRoom(20)

	if _, ok := r.Remove("conn-ghost"); ok {
		t.Error("Removing an unknown connection should report not found")
	}
}

// Removing the last active opponent mid-game finishes it on the spot.
func TestRoom_Remove_FinishesRunningGame(t *testing.T) {
	r := newTestRoom(20)
	r.Join("conn-B", "B")
	r.Join("conn-C", "C")
	r.SetReady("conn-A", 1)
	r.SetReady("conn-B", 2)
	r.SetReady("conn-C", 3)
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// A knocks out B; A and C remain active.
	if _, err := r.Eliminate("conn-A", 2); err != nil {
		t.Fatalf("Eliminate failed: %v", err)
	}

	dep, ok := r.Remove("conn-C")
	if !ok {
		t.Fatal("Remove should find C")
	}
	if !dep.GameOver {
		t.Error("Removing the last active opponent should end the game")
	}
	if dep.Winner == nil || dep.Winner.Name != "A" {
		t.Errorf("Expected winner A, got %+v", dep.Winner)
	}

	snap := r.Snapshot()
	if snap.Phase != state.Finished {
		t.Errorf("Expected phase %q, got %q", state.Finished, snap.Phase)
	}
}

func TestRoom_Remove_TurnIndexStaysOnActiveSeat(t *testing.T) {
	r := newTestRoom(20)
	r.Join("conn-B", "B")
	r.Join("conn-C", "C")
	r.SetReady("conn-A", 1)
	r.SetReady("conn-B", 2)
	r.SetReady("conn-C", 3)
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Turn moves to B, then A leaves; indices shift left but it must
	// still be B's turn.
	if _, err := r.Eliminate("conn-A", 99); err != nil {
		t.Fatalf("Eliminate failed: %v", err)
	}
	if _, ok := r.Remove("conn-A"); !ok {
		t.Fatal("Remove should find A")
	}

	snap := r.Snapshot()
	if snap.Players[snap.CurrentTurn].Name != "B" {
		t.Errorf("Expected B to still hold the turn, got %s", snap.Players[snap.CurrentTurn].Name)
	}
}
