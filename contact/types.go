// Package contact implements the contact intake endpoint and its client.
package contact

import (
	"errors"
	"strings"
	"time"
)

// Response messages
const (
	MsgReceived      = "Message received successfully"
	MsgMissingFields = "Missing required fields"
	MsgInvalidBody   = "Invalid request body"
	MsgInternal      = "Internal server error"
)

// ErrMissingFields reports a submission with an absent or blank field
var ErrMissingFields = errors.New(strings.ToLower(MsgMissingFields))

// Submission is the contact form payload
type Submission struct {
	Codename string `json:"codename"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}

// Validate requires all three fields to be non-blank
func (s Submission) Validate() error {
	if strings.TrimSpace(s.Codename) == "" ||
		strings.TrimSpace(s.Email) == "" ||
		strings.TrimSpace(s.Message) == "" {
		return ErrMissingFields
	}
	return nil
}

// Ack is the success body
type Ack struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id"`
}

// errorBody is every non-2xx body
type errorBody struct {
	Message string `json:"message"`
}
