package main

import "context"

// Player is the playback backend the UI and CLI drive
type Player interface {
	Status(ctx context.Context) (PlayerSnapshot, error)
	Send(ctx context.Context, action Action) error
}
