package dto

import (
	"encoding/json"

	"github.com/voicebank/payment-service/internal/domain/model"
)

// CreateElicitationRequest opens a client round trip for a suspended payment.
type CreateElicitationRequest struct {
	SessionID string `json:"session_id" validate:"required"`

	// RequiresSupervisor forces the supervisor_approval type regardless of
	// the amount policy (specially flagged transactions).
	RequiresSupervisor bool `json:"requires_supervisor,omitempty"`

	// TimeoutSeconds overrides the configured default when positive.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" validate:"omitempty,min=10,max=3600"`
}

// SubmitElicitationResponse carries the raw client payload; its shape is
// validated against the elicitation's declared type before processing.
type SubmitElicitationResponse struct {
	Payload json.RawMessage `json:"payload" validate:"required"`
}

// OTPResponsePayload is the payload for otp elicitations.
type OTPResponsePayload struct {
	OTPCode string `json:"otp_code" validate:"required,len=6,numeric"`
}

// ConfirmationResponsePayload is the payload for confirmation elicitations.
type ConfirmationResponsePayload struct {
	Confirmed *bool `json:"confirmed" validate:"required"`
}

// SupervisorApprovalPayload is the payload for supervisor_approval elicitations.
type SupervisorApprovalPayload struct {
	SupervisorID string `json:"supervisor_id" validate:"required"`
	ApprovalCode string `json:"approval_code" validate:"required"`
}

// ElicitationResult is the outcome of a submitted response. Status is the
// elicitation's new status; Transaction is set when the payment settled.
type ElicitationResult struct {
	ElicitationID string                    `json:"elicitation_id"`
	Status        model.ElicitationStatus   `json:"status"`
	Transaction   *model.PendingTransaction `json:"transaction,omitempty"`
}

// CancelElicitationRequest cancels an in-flight elicitation.
type CancelElicitationRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=255"`
}
