package model

import (
	"time"

	"github.com/google/uuid"
)

type ElicitationType string

const (
	ElicitationTypeOTP                ElicitationType = "otp"
	ElicitationTypeConfirmation       ElicitationType = "confirmation"
	ElicitationTypeSupervisorApproval ElicitationType = "supervisor_approval"
)

type ElicitationStatus string

const (
	ElicitationStatusCreated          ElicitationStatus = "created"
	ElicitationStatusAwaitingResponse ElicitationStatus = "awaiting_response"
	ElicitationStatusResponded        ElicitationStatus = "responded"
	ElicitationStatusCancelled        ElicitationStatus = "cancelled"
	ElicitationStatusExpired          ElicitationStatus = "expired"
)

// IsTerminal reports whether the status accepts no further events.
func (s ElicitationStatus) IsTerminal() bool {
	return s == ElicitationStatusResponded ||
		s == ElicitationStatusCancelled ||
		s == ElicitationStatusExpired
}

// ElicitationField describes a single input the client must collect.
type ElicitationField struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	FieldType string `json:"field_type"`
	Required  bool   `json:"required"`
	MinLength int    `json:"min_length,omitempty"`
	MaxLength int    `json:"max_length,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
	HelpText  string `json:"help_text,omitempty"`
}

// ElicitationContext is the masked payment summary shown to the user.
type ElicitationContext struct {
	Amount      string `json:"amount"`
	Payee       string `json:"payee"`
	Account     string `json:"account"`
	Description string `json:"description,omitempty"`
}

// ElicitationRequest is the prompt pushed to the client. Transient; it is
// not persisted beyond the elicitation state TTL.
type ElicitationRequest struct {
	ElicitationID  string             `json:"elicitation_id"`
	Type           ElicitationType    `json:"elicitation_type"`
	Fields         []ElicitationField `json:"fields"`
	Context        ElicitationContext `json:"context"`
	TimeoutSeconds int                `json:"timeout_seconds"`
}

// ElicitationState is the server-side record of one elicitation round trip,
// stored in Redis with a TTL equal to the response timeout. Code holds the
// Initiator-issued OTP for non-otp types and is never sent to the client.
type ElicitationState struct {
	ElicitationID        string             `json:"elicitation_id"`
	UserID               uuid.UUID          `json:"user_id"`
	SessionID            string             `json:"session_id"`
	PendingTransactionID uuid.UUID          `json:"pending_transaction_id"`
	Type                 ElicitationType    `json:"elicitation_type"`
	Status               ElicitationStatus  `json:"status"`
	Request              ElicitationRequest `json:"request"`
	Code                 string             `json:"code,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	ExpiresAt            time.Time          `json:"expires_at"`
}
