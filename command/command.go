// Package command is the catalog of backend commands: their fixed names and the
// exact argument shapes the backend expects.
package command

import (
	"encoding/json"

	"github.com/grovetools/sheetsync/errors"
)

// Command is one backend invocation: a catalog name plus its arguments.
// Args is nil for commands that take none.
type Command struct {
	Name string
	Args any
}

// Payload encodes the arguments as the JSON object sent to the backend.
// Commands without arguments send an empty object.
func (c Command) Payload() (json.RawMessage, error) {
	if c.Args == nil {
		return json.RawMessage(`{}`), nil
	}
	data, err := json.Marshal(c.Args)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to encode arguments").
			WithDetail("command", c.Name)
	}
	return data, nil
}

// String returns the command name.
func (c Command) String() string {
	return c.Name
}

// Direction is a screen-space direction used by nudge and browse commands.
type Direction string

const (
	Up    Direction = "Up"
	Down  Direction = "Down"
	Left  Direction = "Left"
	Right Direction = "Right"
)

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}
