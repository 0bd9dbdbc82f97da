package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/eventia/stepup/internal/stepup/service"
	"github.com/eventia/stepup/internal/stepup/store"
	"github.com/eventia/stepup/pkg/httpx"
	"github.com/eventia/stepup/pkg/slogx"

	_ "github.com/eventia/stepup/api/stepup" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	authSecret   []byte
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	SessionService *service.SessionService
	EnrollService  *service.EnrollService
	DeviceService  *service.DeviceService
	GateService    *service.GateService
}

func NewRouter(authSecret []byte, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		authSecret:   authSecret,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerChallenges()
	r.registerEnrollment()
	r.registerDevices()
	r.registerStepUp()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Step-Up Verification Service API
//	@version		0.1.0
//	@description	Second-factor verification for privileged actions: SMS and authenticator (TOTP) challenges, trusted-device exemptions, and short-lived authorization receipts gated by monetary thresholds.
//	@description
//	@description				Challenge sessions are single use, expire after five minutes, and lock the subject out after five wrong codes.
//
//	@contact.name				Eventia Team
//	@contact.url				https://github.com/eventia/stepup
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerChallenges() {
	handler := &ChallengeHandler{
		Sessions: r.SessionService,
		Gate:     r.GateService,
		Devices:  r.DeviceService,
	}
	authn := httpx.AuthnMiddleware(r.authSecret)

	// Initiation and verification are the brute-force surface; they get the
	// strict profile on top of the per-session attempt counter.
	r.Mux.Handle("POST /v1/challenges",
		httpx.Chain(http.HandlerFunc(handler.HandleInitiate),
			authn,
			httpx.RateLimitBySubject(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/challenges/{id}/verify",
		httpx.Chain(http.HandlerFunc(handler.HandleVerify),
			authn,
			httpx.RateLimitBySubject(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/challenges/{id}/resend",
		httpx.Chain(http.HandlerFunc(handler.HandleResend),
			authn,
			httpx.RateLimitBySubject(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/challenges/{id}",
		httpx.Chain(http.HandlerFunc(handler.HandleCancel),
			authn,
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerEnrollment() {
	handler := &EnrollHandler{Enroll: r.EnrollService}
	authn := httpx.AuthnMiddleware(r.authSecret)

	r.Mux.Handle("POST /v1/totp/enroll",
		httpx.Chain(http.HandlerFunc(handler.HandleEnroll),
			authn,
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/totp/activate",
		httpx.Chain(http.HandlerFunc(handler.HandleActivate),
			authn,
			httpx.RateLimitBySubject(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/totp",
		httpx.Chain(http.HandlerFunc(handler.HandleDisable),
			authn,
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerDevices() {
	handler := &DevicesHandler{Devices: r.DeviceService}
	authn := httpx.AuthnMiddleware(r.authSecret)

	r.Mux.Handle("GET /v1/devices",
		httpx.Chain(http.HandlerFunc(handler.HandleList),
			authn,
			httpx.RateLimitBySubject(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/devices",
		httpx.Chain(http.HandlerFunc(handler.HandleTrust),
			authn,
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/devices/{id}",
		httpx.Chain(http.HandlerFunc(handler.HandleRevoke),
			authn,
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/devices",
		httpx.Chain(http.HandlerFunc(handler.HandleRevokeAll),
			authn,
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerStepUp() {
	handler := &GateHandler{Gate: r.GateService}
	authn := httpx.AuthnMiddleware(r.authSecret)

	r.Mux.Handle("POST /v1/stepup/authorize",
		httpx.Chain(http.HandlerFunc(handler.HandleAuthorize),
			authn,
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/stepup/confirm",
		httpx.Chain(http.HandlerFunc(handler.HandleConfirm),
			authn,
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/stepup/complete",
		httpx.Chain(http.HandlerFunc(handler.HandleComplete),
			authn,
			httpx.RateLimitBySubject(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("GET /v1/stepup/receipt",
		httpx.Chain(http.HandlerFunc(handler.HandleReceipt),
			authn,
			httpx.RateLimitBySubject(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))

	auditHandler := &AuditHandler{Events: r.store.AuditEvents()}
	r.Mux.Handle("GET /v1/audit",
		httpx.Chain(http.HandlerFunc(auditHandler.HandleList),
			httpx.AuthnMiddleware(r.authSecret),
			httpx.RateLimitBySubject(httpx.LenientLimit),
		),
	)
}
