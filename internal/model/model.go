package model

import (
	"regexp"
	"strings"
)

type GameState string

const (
	StateIdle     GameState = "IDLE"
	StateVoting   GameState = "VOTING"
	StateFinished GameState = "FINISHED"
)

type RoomCode string

const EmptyRoomCode RoomCode = ""

const RoomCodeLength = 6

var roomCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// NormalizeRoomCode uppercases a user-supplied code. Codes arrive from URL
// paths and are matched case-insensitively.
func NormalizeRoomCode(raw string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(raw)))
}

func (c RoomCode) Valid() bool {
	return roomCodePattern.MatchString(string(c))
}

type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Session is the sole unit of persistence: one room, stored and overwritten
// as a whole blob under its code.
//
// VotingStartTime is epoch milliseconds, non-nil exactly while the room is
// in StateVoting. Every client derives its countdown from it.
type Session struct {
	ID              RoomCode              `json:"id"`
	HostID          string                `json:"hostId"`
	Participants    []Participant         `json:"users"`
	Votes           map[string]TShirtSize `json:"votes"`
	GameState       GameState             `json:"gameState"`
	VotingStartTime *int64                `json:"votingStartTime"`
}

// ParticipantIndex returns the position of the participant with the given id,
// or -1 if absent.
func (s *Session) ParticipantIndex(userID string) int {
	for i, p := range s.Participants {
		if p.ID == userID {
			return i
		}
	}
	return -1
}

// FullQuorum reports whether every current participant has a recorded vote.
func (s *Session) FullQuorum() bool {
	if len(s.Participants) == 0 {
		return false
	}
	for _, p := range s.Participants {
		if _, ok := s.Votes[p.ID]; !ok {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so callers can mutate the result without
// aliasing the original's slice and map.
func (s Session) Clone() Session {
	out := s
	out.Participants = make([]Participant, len(s.Participants))
	copy(out.Participants, s.Participants)
	out.Votes = make(map[string]TShirtSize, len(s.Votes))
	for id, size := range s.Votes {
		out.Votes[id] = size
	}
	if s.VotingStartTime != nil {
		ts := *s.VotingStartTime
		out.VotingStartTime = &ts
	}
	return out
}
