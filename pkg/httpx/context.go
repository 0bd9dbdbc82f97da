package httpx

import "context"

type ctxKey string

const (
	// CtxKeySubjectID carries the authenticated subject id injected by
	// AuthnMiddleware.
	CtxKeySubjectID ctxKey = "subject_id"
)

// SubjectFromContext returns the authenticated subject id, or "" when the
// request was not authenticated.
func SubjectFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySubjectID).(string); ok {
		return v
	}
	return ""
}
