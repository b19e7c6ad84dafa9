package waitlist

import "errors"

// Sentinel errors for the waitlist domain. They sit under the AppError
// returned to callers so errors.Is works across layers.
var (
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrEntryNotFound    = errors.New("waitlist entry not found")
	ErrStoreUnavailable = errors.New("waitlist store unavailable")
)

// Client-facing messages.
const (
	msgMissingFields     = "Missing required fields"
	msgInvalidActorType  = "Invalid actor_type"
	msgInvalidEmail      = "Invalid email format"
	msgInvalidBody       = "Invalid request body"
	msgEmailRegistered   = "Email already registered"
	msgAlreadyOnWaitlist = "This email is already on our waitlist!"
	msgJoinFailed        = "Failed to join waitlist"
	msgTryLater          = "Please try again later"
	msgFetchWaitlistFail = "Failed to fetch waitlist"
	msgFetchStatsFail    = "Failed to fetch stats"
	msgEntryNotFound     = "Entry not found"
	msgUpdateEntryFail   = "Failed to update entry"
	msgExportFail        = "Failed to export data"
	msgSignupSuccess     = "Successfully joined the waitlist!"
)
