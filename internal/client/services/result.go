package services

import (
	"errors"

	"github.com/dmitrijs2005/civicstate/internal/client/client"
)

// Result is what outward operations (staff login, admin actions) hand back
// to the UI instead of an error.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func success() Result { return Result{Success: true} }

// failure turns err into a message fit for an alert.
func failure(err error) Result {
	var msg string
	switch {
	case errors.Is(err, client.ErrUnavailable):
		msg = "Server is unreachable, please try again later."
	case errors.Is(err, client.ErrUnauthorized):
		msg = "Not authorized."
	case errors.Is(err, client.ErrNotFound):
		msg = "Not found."
	default:
		msg = err.Error()
	}
	return Result{Success: false, Error: msg}
}
