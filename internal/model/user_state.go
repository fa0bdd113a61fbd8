package model

import "time"

// Conversation steps of the guided transaction entry.
const (
	StepPickAccount     = "pick_account"
	StepPickCategory    = "pick_category"
	StepPickDestination = "pick_destination"
	StepPickFrequency   = "pick_frequency"
	StepPickMember      = "pick_member"
	StepAwaitAmount     = "await_amount"
)

// UserState is the half-filled transaction a user is building in the chat.
// Options holds the choices of the keyboard last shown, in button order.
type UserState struct {
	UserID          int64
	TransactionType Kind
	Account         string
	Category        string
	Destination     string
	Frequency       Frequency
	Member          string
	AwaitingAction  string
	Options         []string
	UpdatedAt       time.Time
}
