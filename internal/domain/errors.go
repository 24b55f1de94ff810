// Package domain contains entities without logic, just meta-data
package domain

import "errors"

var (
	ErrCapacityExceeded = errors.New("room capacity exceeded")
	ErrRoomNotFound     = errors.New("room not found")
)
