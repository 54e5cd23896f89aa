package client_poker

import (
	"math/rand"
	"strings"

	"github.com/NicolasKocher/sprint-poker/internal/model"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRoomCode builds a fresh room code client-side. Collisions are
// possible and accepted: create overwrites silently.
func GenerateRoomCode() model.RoomCode {
	var builder strings.Builder
	builder.Grow(model.RoomCodeLength)

	for i := 0; i < model.RoomCodeLength; i++ {
		builder.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
	}

	return model.RoomCode(builder.String())
}
