package constants

// Redis key prefixes. OTP and session entries share one TTL window so a
// pending payment can never outlive its code.
const (
	OTPPrefix         = "payment:otp:"
	SessionPrefix     = "payment:session:"
	ElicitationPrefix = "elicitation:"
)

// Pub/sub channel prefixes. Both channels are fanned out per user.
const (
	ElicitationChannelPrefix  = "elicitations:"
	NotificationChannelPrefix = "notifications:"
)
