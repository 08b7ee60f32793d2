// Package domain contains entities without logic, just meta-data.
package domain

import "errors"

const MaxRoomIDLen = 64

var (
	ErrRoomIDEmpty   = errors.New("room id empty")
	ErrRoomIDTooLong = errors.New("room id too long")
)

type (
	// RoomID names one call scope. It is issued by the booking service;
	// the relay treats it as opaque.
	RoomID string

	// SocketID identifies a live connection. A user who reconnects gets
	// a fresh SocketID, so it is not an application user identity.
	SocketID string
)

// ValidateRoomID keeps ad-hoc length checks out of the adapters.
func ValidateRoomID(id RoomID) error {
	if len(id) == 0 {
		return ErrRoomIDEmpty
	}
	if len(id) > MaxRoomIDLen {
		return ErrRoomIDTooLong
	}
	return nil
}
