package flow

import (
	"context"

	"github.com/rootzsu/orderbot/internal/domain"
)

// Choice is one inline button attached to a prompt. Key routes the press
// back into the engine as a button event; Payload travels with it.
type Choice struct {
	Label   string
	Key     string
	Payload string
}

// Prompt is one outgoing message with an optional button grid.
type Prompt struct {
	Text    string
	Choices [][]Choice
}

// Responder delivers engine output. Implementations belong to the transport
// adapter; the engine never touches transport types directly.
type Responder interface {
	// Prompt sends a message to one user. A delivery failure is reported
	// but never blocks or rolls back the state transition that produced it.
	Prompt(ctx context.Context, userID int64, p Prompt) error

	// Relay forwards a user's text to the operator channel, annotated with
	// the sender so operators can reply.
	Relay(ctx context.Context, from domain.User, text string) error
}
