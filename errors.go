package main

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrGameInProgress   = errors.New("game already in progress")
	ErrRoomFull         = errors.New("room is full")
	ErrForbidden        = errors.New("only the host can start the game")
	ErrNotEnoughPlayers = errors.New("need at least 2 players to start")
	ErrUnbalancedTeams  = errors.New("both teams need at least one player")
	ErrNotPlaying       = errors.New("game not in progress")
	ErrNotYourTurn      = errors.New("not your turn")
)
