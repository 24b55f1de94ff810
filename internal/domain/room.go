package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const MaxRoomNameLen = 128

var (
	ErrRoomNameEmpty   = errors.New("room name empty")
	ErrRoomNameTooLong = errors.New("room name too long")
)

type (
	RoomName string
	RoomID   string
)

// Room is the immutable identity of a poll room.
type Room struct {
	ID   RoomID
	Name RoomName
}

// NewRoomName normalizes a connect path into a room key.
// "/team" and "team" resolve to the same room.
func NewRoomName(path string) (RoomName, error) {
	name := strings.Trim(path, "/")
	if name == "" {
		return "", ErrRoomNameEmpty
	}
	if len(name) > MaxRoomNameLen {
		return "", ErrRoomNameTooLong
	}
	return RoomName(name), nil
}

func NewRoom(name RoomName) *Room {
	return &Room{ID: RoomID(uuid.NewString()), Name: name}
}
