package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGatewayUnderTest(t *testing.T) (*Gateway, *Registry, *manualTicker) {
	t.Helper()
	cfg := testGameConfig()
	reg := NewRegistry(WordSource{}, cfg)
	g := NewGateway(reg, cfg)
	mt := &manualTicker{}
	g.scheduler.ticker = mt.factory
	return g, reg, mt
}

func playingRoom(t *testing.T, reg *Registry) *Room {
	t.Helper()
	room := reg.CreateRoom("alice-id", "Alice")
	_, err := reg.JoinRoom(room.ID, "bob-id", "Bob", 2)
	require.NoError(t, err)
	require.NoError(t, room.startGame("alice-id"))
	return room
}

func currentPlayer(room *Room) string {
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.CurrentPlayer
}

func TestTurnTimeoutEndsTurnExactlyOnce(t *testing.T) {
	g, reg, mt := newGatewayUnderTest(t)
	room := playingRoom(t, reg)

	_, _, err := room.startTurn("alice-id")
	require.NoError(t, err)
	g.scheduler.Start(room.ID, room.turnSerial, 30)

	for i := 0; i < 30; i++ {
		mt.tick(0)
	}

	// The expiry runs on the timer goroutine; it ends the turn with
	// the room's own current player.
	require.Eventually(t, func() bool {
		return currentPlayer(room) == "bob-id"
	}, time.Second, 5*time.Millisecond)

	// The old describer cannot end the already-advanced turn again.
	room.mu.Lock()
	_, err = room.endTurn("alice-id")
	positions := map[int]int{1: room.Teams[1].Position, 2: room.Teams[2].Position}
	room.mu.Unlock()

	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.Equal(t, map[int]int{1: 0, 2: 0}, positions)
}

func TestStaleTimeoutIsIgnoredAfterExplicitEndTurn(t *testing.T) {
	g, reg, _ := newGatewayUnderTest(t)
	room := playingRoom(t, reg)

	_, _, err := room.startTurn("alice-id")
	require.NoError(t, err)
	staleSerial := room.turnSerial

	_, err = room.wordCorrect("alice-id")
	require.NoError(t, err)
	_, err = room.endTurn("alice-id")
	require.NoError(t, err)
	g.scheduler.Cancel(room.ID)

	// The timeout for the already-ended turn loses the race and must
	// change nothing.
	g.handleTurnTimeout(room.ID, staleSerial)

	assert.Equal(t, "bob-id", room.CurrentPlayer)
	assert.Equal(t, 2, room.CurrentTeam)
	assert.Equal(t, 1, room.Teams[1].Position)
	assert.Equal(t, staleSerial+1, room.turnSerial)
}

func TestTimeoutAdvancesCurrentTurn(t *testing.T) {
	g, reg, _ := newGatewayUnderTest(t)
	room := playingRoom(t, reg)

	_, _, err := room.startTurn("alice-id")
	require.NoError(t, err)

	g.handleTurnTimeout(room.ID, room.turnSerial)

	assert.Equal(t, 2, room.CurrentTeam)
	assert.Equal(t, "bob-id", room.CurrentPlayer)
}

func TestTimeoutForUnknownRoomIsNoop(t *testing.T) {
	g, _, _ := newGatewayUnderTest(t)
	g.handleTurnTimeout("GONE42", 0)
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

// readEvent reads the next message of interest, skipping timer ticks,
// and asserts its type.
func readEvent(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Type string         `json:"type"`
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg.Type == "timerTick" {
			continue
		}
		require.Equal(t, want, msg.Type, "unexpected event")
		return msg.Data
	}
}

func sendEvent(t *testing.T, conn *websocket.Conn, msgType string, data any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(Message{Type: msgType, Data: data}))
}

func TestHealthEndpoint(t *testing.T) {
	cfg := testGameConfig()
	srv := httptest.NewServer(setupRouter(NewGateway(NewRegistry(WordSource{}, cfg), cfg)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebsocketGameFlow(t *testing.T) {
	cfg := testGameConfig()
	srv := httptest.NewServer(setupRouter(NewGateway(NewRegistry(WordSource{}, cfg), cfg)))
	defer srv.Close()

	alice := dialWS(t, srv)
	defer alice.Close()
	hello := readEvent(t, alice, "connected")
	aliceID := hello["clientId"].(string)

	sendEvent(t, alice, "createRoom", createRoomRequest{Name: "Alice"})
	created := readEvent(t, alice, "roomCreated")
	roomID := created["room"].(map[string]any)["id"].(string)

	bob := dialWS(t, srv)
	defer bob.Close()
	bobHello := readEvent(t, bob, "connected")
	bobID := bobHello["clientId"].(string)

	sendEvent(t, bob, "joinRoom", joinRoomRequest{RoomID: roomID, Name: "Bob", TeamID: 2})
	readEvent(t, alice, "roomUpdated")
	updated := readEvent(t, bob, "roomUpdated")
	room := updated["room"].(map[string]any)
	assert.Len(t, room["players"], 2)

	sendEvent(t, alice, "startGame", roomRequest{RoomID: roomID})
	readEvent(t, alice, "gameStarted")
	started := readEvent(t, bob, "gameStarted")
	assert.Equal(t, "playing", started["room"].(map[string]any)["state"])

	sendEvent(t, alice, "startTurn", roomRequest{RoomID: roomID})
	word := readEvent(t, alice, "wordReceived")
	assert.NotEmpty(t, word["word"])
	readEvent(t, alice, "turnStarted")
	// Bob sees the turn start but never the word itself.
	turn := readEvent(t, bob, "turnStarted")
	assert.Equal(t, aliceID, turn["playerId"])

	sendEvent(t, alice, "wordCorrect", roomRequest{RoomID: roomID})
	guessed := readEvent(t, alice, "wordGuessed")
	assert.Equal(t, float64(1), guessed["score"])
	readEvent(t, alice, "wordReceived")
	readEvent(t, bob, "wordGuessed")

	sendEvent(t, alice, "endTurn", roomRequest{RoomID: roomID})
	ended := readEvent(t, alice, "turnEnded")
	assert.Equal(t, float64(1), ended["score"])
	assert.Equal(t, float64(2), ended["nextTeam"])
	assert.Equal(t, bobID, ended["nextDescriber"])
	readEvent(t, bob, "turnEnded")

	require.NoError(t, bob.Close())
	left := readEvent(t, alice, "playerLeft")
	assert.Len(t, left["room"].(map[string]any)["players"], 1)
}

func TestWebsocketRejectsWrongTurn(t *testing.T) {
	cfg := testGameConfig()
	srv := httptest.NewServer(setupRouter(NewGateway(NewRegistry(WordSource{}, cfg), cfg)))
	defer srv.Close()

	alice := dialWS(t, srv)
	defer alice.Close()
	readEvent(t, alice, "connected")
	sendEvent(t, alice, "createRoom", createRoomRequest{Name: "Alice"})
	created := readEvent(t, alice, "roomCreated")
	roomID := created["room"].(map[string]any)["id"].(string)

	bob := dialWS(t, srv)
	defer bob.Close()
	readEvent(t, bob, "connected")
	sendEvent(t, bob, "joinRoom", joinRoomRequest{RoomID: roomID, Name: "Bob", TeamID: 2})
	readEvent(t, bob, "roomUpdated")

	// Bob is not the host.
	sendEvent(t, bob, "startGame", roomRequest{RoomID: roomID})
	failure := readEvent(t, bob, "error")
	assert.Equal(t, "startGame", failure["op"])

	sendEvent(t, alice, "startGame", roomRequest{RoomID: roomID})
	readEvent(t, bob, "gameStarted")

	// Bob is not the describer either.
	sendEvent(t, bob, "startTurn", roomRequest{RoomID: roomID})
	failure = readEvent(t, bob, "error")
	assert.Equal(t, "startTurn", failure["op"])
	assert.Equal(t, ErrNotYourTurn.Error(), failure["message"])
}
