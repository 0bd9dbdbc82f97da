package domain

// Kind classifies every user-facing verification failure.
type Kind string

const (
	// KindNotFound: unknown, already-consumed, or cancelled session.
	KindNotFound Kind = "not_found"
	// KindExpired: the session passed its expiry; a fresh initiate is needed.
	KindExpired Kind = "expired"
	// KindLocked: the subject is locked out, either by a pre-existing
	// lockout or one just triggered by this attempt.
	KindLocked Kind = "locked"
	// KindInvalidCode: the submitted code did not match; attempts remain.
	KindInvalidCode Kind = "invalid_code"
	// KindSetupRequired: a totp challenge was requested but the subject has
	// no active enrollment.
	KindSetupRequired Kind = "setup_required"
	// KindDeliveryFailure: the delivery channel rejected the dispatch.
	KindDeliveryFailure Kind = "delivery_failure"
	// KindTimeout: the delivery channel did not respond in time.
	KindTimeout Kind = "timeout"
)

// Failure is the typed error returned for every verification-flow failure.
// It pairs a machine-readable kind with a human-readable localized message;
// InvalidCode failures additionally report how many attempts remain.
type Failure struct {
	Kind      Kind
	Remaining int // attempts remaining; meaningful only for KindInvalidCode
}

func (f *Failure) Error() string {
	return f.Message("en")
}

// Is matches failures by kind so call sites can use errors.Is with the
// exported sentinel values below regardless of the Remaining count.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	return ok && t.Kind == f.Kind
}

// Message returns the localized human-readable description for the failure.
// Unknown locales fall back to English.
func (f *Failure) Message(locale string) string {
	catalog, ok := messages[locale]
	if !ok {
		catalog = messages["en"]
	}
	return catalog[f.Kind]
}

// Sentinel failures for errors.Is checks.
var (
	ErrNotFound        = &Failure{Kind: KindNotFound}
	ErrExpired         = &Failure{Kind: KindExpired}
	ErrLocked          = &Failure{Kind: KindLocked}
	ErrInvalidCode     = &Failure{Kind: KindInvalidCode}
	ErrSetupRequired   = &Failure{Kind: KindSetupRequired}
	ErrDeliveryFailure = &Failure{Kind: KindDeliveryFailure}
	ErrTimeout         = &Failure{Kind: KindTimeout}
)

// NewInvalidCode returns an InvalidCode failure reporting the attempts left
// before lockout.
func NewInvalidCode(remaining int) *Failure {
	return &Failure{Kind: KindInvalidCode, Remaining: remaining}
}

var messages = map[string]map[Kind]string{
	"en": {
		KindNotFound:        "This verification request no longer exists. Please start again.",
		KindExpired:         "This verification code has expired. Please request a new one.",
		KindLocked:          "Too many failed attempts. Your account is temporarily locked, try again later.",
		KindInvalidCode:     "The code you entered is incorrect. Please check and try again.",
		KindSetupRequired:   "You need to set up an authenticator app before using this verification method.",
		KindDeliveryFailure: "We couldn't send your verification code. Please try again.",
		KindTimeout:         "Sending your verification code took too long. Please try again.",
	},
	"es": {
		KindNotFound:        "Esta solicitud de verificación ya no existe. Comienza de nuevo.",
		KindExpired:         "Este código de verificación ha caducado. Solicita uno nuevo.",
		KindLocked:          "Demasiados intentos fallidos. Tu cuenta está bloqueada temporalmente, inténtalo más tarde.",
		KindInvalidCode:     "El código introducido es incorrecto. Compruébalo e inténtalo de nuevo.",
		KindSetupRequired:   "Necesitas configurar una aplicación de autenticación antes de usar este método.",
		KindDeliveryFailure: "No pudimos enviar tu código de verificación. Inténtalo de nuevo.",
		KindTimeout:         "El envío de tu código tardó demasiado. Inténtalo de nuevo.",
	},
}
