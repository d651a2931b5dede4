package main

import (
	"encoding/json"
	"sync"
)

type RoomState string

const (
	StateLobby    RoomState = "lobby"
	StatePlaying  RoomState = "playing"
	StateFinished RoomState = "finished"
)

type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	TeamID int    `json:"teamId"`
}

type Team struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Color       string   `json:"color"`
	Position    int      `json:"position"`
	PlayerNames []string `json:"playerNames"`
}

// Room is the per-game aggregate. All mutation happens under mu;
// the transition methods in room.go expect mu to already be held.
type Room struct {
	mu sync.Mutex

	ID                string        `json:"id"`
	Host              string        `json:"host"`
	Players           []*Player     `json:"players"`
	Teams             map[int]*Team `json:"teams"`
	State             RoomState     `json:"state"`
	CurrentTeam       int           `json:"currentTeam"`
	CurrentPlayer     string        `json:"currentPlayer"`
	CurrentPlayerName string        `json:"currentPlayerName"`
	DescriberIndex    int           `json:"describerIndex"`
	TurnScore         int           `json:"turnScore"`
	BoardSize         int           `json:"boardSize"`
	BoardSpaces       []BoardSpace  `json:"boardSpaces"`

	// turnSerial increments every time a turn is concluded. The
	// scheduler carries the serial it was started with so a timeout
	// racing an explicit end of the same turn fires at most once.
	turnSerial uint64

	words WordSource
}

// TurnOutcome is the result of concluding a turn, identical for the
// explicit endTurn path and the scheduler timeout path.
type TurnOutcome struct {
	Score             int         `json:"score"`
	TeamID            int         `json:"teamId"`
	Positions         map[int]int `json:"positions"`
	NextTeam          int         `json:"nextTeam"`
	NextDescriber     string      `json:"nextDescriber"`
	NextDescriberName string      `json:"nextDescriberName"`
	GameOver          bool        `json:"gameOver"`
	Winner            int         `json:"winner,omitempty"`
}

// Message is the websocket envelope for everything the server sends.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// clientMessage is the inbound envelope; Data stays raw until the
// dispatch switch knows which payload to decode it into.
type clientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type createRoomRequest struct {
	Name string `json:"name"`
}

type joinRoomRequest struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
	TeamID int    `json:"teamId,omitempty"`
}

type roomRequest struct {
	RoomID string `json:"roomId"`
}

type wordPayload struct {
	Word     string   `json:"word"`
	Category Category `json:"category"`
}

type turnStartedPayload struct {
	TeamID        int      `json:"teamId"`
	PlayerID      string   `json:"playerId"`
	PlayerName    string   `json:"playerName"`
	Category      Category `json:"category"`
	TimeRemaining int      `json:"timeRemaining"`
}

type wordGuessedPayload struct {
	Correct bool `json:"correct"`
	Score   int  `json:"score"`
	TeamID  int  `json:"teamId"`
}

type roomPayload struct {
	Room json.RawMessage `json:"room"`
}

type turnEndedPayload struct {
	*TurnOutcome
	Room json.RawMessage `json:"room"`
}

type timerTickPayload struct {
	TimeRemaining int `json:"timeRemaining"`
}

type errorPayload struct {
	Op      string `json:"op"`
	Message string `json:"message"`
}
