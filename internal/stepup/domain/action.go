package domain

// ActionType names a privileged operation gated by step-up verification.
type ActionType string

const (
	ActionPayment          ActionType = "payment"
	ActionAccountDeletion  ActionType = "account_deletion"
	ActionDataExport       ActionType = "data_export"
	ActionCredentialChange ActionType = "credential_change"
	ActionAdminLogin       ActionType = "admin_login"
)

// Valid reports whether a is one of the gated action types. Receipts are
// keyed by action, so arbitrary strings from the wire must be rejected
// before they reach the gate.
func (a ActionType) Valid() bool {
	switch a {
	case ActionPayment, ActionAccountDeletion, ActionDataExport,
		ActionCredentialChange, ActionAdminLogin:
		return true
	}
	return false
}

// Requirement is the gate's decision for an action.
type Requirement string

const (
	// RequireNone lets the action proceed without any extra step.
	RequireNone Requirement = "none"

	// RequireConfirmation asks the subject for an explicit yes/no
	// confirmation but no passcode.
	RequireConfirmation Requirement = "confirmation"

	// RequireChallenge demands a full passcode challenge (sms or totp).
	RequireChallenge Requirement = "challenge"
)
