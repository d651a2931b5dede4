package main

import (
	"math/rand"
	"sync"
)

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Registry owns every live room plus a player-to-room index so a
// disconnect resolves in one lookup instead of a scan. Lock order is
// always reg.mu before room.mu.
type Registry struct {
	mu          sync.RWMutex
	rooms       map[string]*Room
	playerRooms map[string]string
	words       WordSource
	cfg         GameConfig
}

func NewRegistry(words WordSource, cfg GameConfig) *Registry {
	return &Registry{
		rooms:       make(map[string]*Room),
		playerRooms: make(map[string]string),
		words:       words,
		cfg:         cfg,
	}
}

func (reg *Registry) CreateRoom(ownerID, ownerName string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code := reg.newCode()
	room := &Room{
		ID:      code,
		Host:    ownerID,
		Players: []*Player{{ID: ownerID, Name: ownerName, TeamID: 1}},
		Teams: map[int]*Team{
			1: {ID: 1, Name: "Team 1", Color: "#FF6B6B", PlayerNames: []string{ownerName}},
			2: {ID: 2, Name: "Team 2", Color: "#4ECDC4", PlayerNames: []string{}},
		},
		State:       StateLobby,
		CurrentTeam: 1,
		BoardSize:   reg.cfg.BoardSize,
		BoardSpaces: buildBoard(reg.cfg.BoardSize),
		words:       reg.words,
	}

	reg.rooms[code] = room
	reg.playerRooms[ownerID] = code
	return room
}

// newCode allocates a fresh room code, retrying until it finds one no
// live room holds. Collisions are possible, never surfaced. Caller
// holds reg.mu.
func (reg *Registry) newCode() string {
	for {
		code := make([]byte, reg.cfg.RoomCodeLength)
		for i := range code {
			code[i] = roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))]
		}
		if _, taken := reg.rooms[string(code)]; !taken {
			return string(code)
		}
	}
}

func (reg *Registry) Room(roomID string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[roomID]
	return room, ok
}

func (reg *Registry) JoinRoom(roomID, playerID, playerName string, requestedTeam int) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.State != StateLobby {
		return nil, ErrGameInProgress
	}
	if len(room.Players) >= reg.cfg.MaxPlayers {
		return nil, ErrRoomFull
	}

	teamID := requestedTeam
	if teamID != 1 && teamID != 2 {
		// Auto-assign by player-count parity to keep teams balanced.
		if len(room.Players)%2 == 0 {
			teamID = 1
		} else {
			teamID = 2
		}
	}

	room.Players = append(room.Players, &Player{ID: playerID, Name: playerName, TeamID: teamID})
	team := room.Teams[teamID]
	team.PlayerNames = append(team.PlayerNames, playerName)

	reg.playerRooms[playerID] = roomID
	return room, nil
}

// RemovePlayer is the sole teardown path. It returns the mutated room
// (nil when the player was in no room, or when the room emptied) and
// the id of the room that was evicted because this was its last
// player.
func (reg *Registry) RemovePlayer(playerID string) (*Room, string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	roomID, ok := reg.playerRooms[playerID]
	if !ok {
		return nil, ""
	}
	delete(reg.playerRooms, playerID)

	room := reg.rooms[roomID]
	room.mu.Lock()
	defer room.mu.Unlock()

	for i, p := range room.Players {
		if p.ID != playerID {
			continue
		}
		room.Players = append(room.Players[:i], room.Players[i+1:]...)

		team := room.Teams[p.TeamID]
		for j, name := range team.PlayerNames {
			if name == p.Name {
				team.PlayerNames = append(team.PlayerNames[:j], team.PlayerNames[j+1:]...)
				break
			}
		}
		break
	}

	if len(room.Players) == 0 {
		delete(reg.rooms, roomID)
		return nil, roomID
	}

	if room.Host == playerID {
		room.Host = room.Players[0].ID
	}
	return room, ""
}
