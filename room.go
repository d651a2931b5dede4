package main

import "encoding/json"

// The transitions below are pure state mutations: no I/O, no timers.
// Callers hold r.mu.

func (r *Room) startGame(callerID string) error {
	if r.State != StateLobby {
		return ErrGameInProgress
	}
	if r.Host != callerID {
		return ErrForbidden
	}
	if len(r.Players) < 2 {
		return ErrNotEnoughPlayers
	}
	if len(r.teamMembers(1)) == 0 || len(r.teamMembers(2)) == 0 {
		return ErrUnbalancedTeams
	}

	first := r.Players[0]
	r.State = StatePlaying
	r.DescriberIndex = 0
	// The first player in join order opens the game. That is normally
	// the creator on team 1, but host churn in the lobby can reorder.
	r.CurrentTeam = first.TeamID
	r.CurrentPlayer = first.ID
	r.CurrentPlayerName = first.Name
	return nil
}

func (r *Room) startTurn(callerID string) (string, Category, error) {
	if r.State != StatePlaying {
		return "", "", ErrNotPlaying
	}
	if r.CurrentPlayer != callerID {
		return "", "", ErrNotYourTurn
	}
	r.TurnScore = 0
	word, category := r.nextWord()
	return word, category, nil
}

// nextWord draws from the category of the board space under the
// current team. Position never moves mid-turn, so the category is
// stable for the whole turn. START and FINISH draw fully random.
func (r *Room) nextWord() (string, Category) {
	position := r.Teams[r.CurrentTeam].Position
	category := r.BoardSpaces[position].Category
	if category == CategoryStart || category == CategoryFinish {
		return r.words.RandomWord()
	}
	return r.words.WordForCategory(category)
}

func (r *Room) wordCorrect(callerID string) (int, error) {
	if r.State != StatePlaying {
		return 0, ErrNotPlaying
	}
	if r.CurrentPlayer != callerID {
		return 0, ErrNotYourTurn
	}
	r.TurnScore++
	return r.TurnScore, nil
}

func (r *Room) skipWord(callerID string) error {
	if r.State != StatePlaying {
		return ErrNotPlaying
	}
	if r.CurrentPlayer != callerID {
		return ErrNotYourTurn
	}
	return nil
}

// endTurn banks the turn score onto the acting team and either
// finishes the game or rotates to the next describer. The scheduler's
// timeout path calls this with the room's own CurrentPlayer, so the
// caller check holds trivially there.
func (r *Room) endTurn(callerID string) (*TurnOutcome, error) {
	if r.State != StatePlaying {
		return nil, ErrNotPlaying
	}
	if r.CurrentPlayer != callerID {
		return nil, ErrNotYourTurn
	}

	team := r.Teams[r.CurrentTeam]
	team.Position += r.TurnScore

	outcome := &TurnOutcome{
		Score:  r.TurnScore,
		TeamID: r.CurrentTeam,
	}
	r.TurnScore = 0
	r.turnSerial++

	if team.Position >= r.BoardSize {
		r.State = StateFinished
		outcome.GameOver = true
		outcome.Winner = team.ID
		// CurrentTeam and CurrentPlayer are frozen from here on.
	} else {
		r.DescriberIndex++
		r.rotateDescriber()
	}

	outcome.Positions = map[int]int{1: r.Teams[1].Position, 2: r.Teams[2].Position}
	outcome.NextTeam = r.CurrentTeam
	outcome.NextDescriber = r.CurrentPlayer
	outcome.NextDescriberName = r.CurrentPlayerName
	return outcome, nil
}

// rotateDescriber flips to the other team and derives that team's own
// cursor from the shared DescriberIndex. Teams strictly alternate, so
// team 1 owns the even turns and team 2 the odd ones; dividing by two
// walks each roster independently of the other team's size. The
// derivation is only correct while turns alternate every time.
func (r *Room) rotateDescriber() {
	nextTeam := otherTeam(r.CurrentTeam)
	members := r.teamMembers(nextTeam)
	if len(members) == 0 {
		// Roster emptied by a mid-game disconnect. Keep the turn with
		// the current describer rather than hand it to nobody.
		return
	}

	var index int
	if nextTeam == 1 {
		index = (r.DescriberIndex / 2) % len(members)
	} else {
		index = ((r.DescriberIndex - 1) / 2) % len(members)
	}

	next := members[index]
	r.CurrentTeam = nextTeam
	r.CurrentPlayer = next.ID
	r.CurrentPlayerName = next.Name
}

// teamMembers filters the join-ordered player list, so each team's
// roster keeps join order too.
func (r *Room) teamMembers(teamID int) []*Player {
	members := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.TeamID == teamID {
			members = append(members, p)
		}
	}
	return members
}

func otherTeam(teamID int) int {
	if teamID == 1 {
		return 2
	}
	return 1
}

// snapshotLocked marshals the room for a room-scoped broadcast.
func (r *Room) snapshotLocked() json.RawMessage {
	data, _ := json.Marshal(r)
	return data
}
