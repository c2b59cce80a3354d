package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hazelworks/personachat/internal/auth/revocation"
	"github.com/hazelworks/personachat/internal/auth/service"
	"github.com/hazelworks/personachat/internal/auth/store"
	"github.com/hazelworks/personachat/pkg/httpx"
	"github.com/hazelworks/personachat/pkg/jwtx"
	"github.com/hazelworks/personachat/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec        *jwtx.Codec
	cookies      *httpx.CookieWriter
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store        store.Store
	AuthService  *service.AuthService
	OAuthService *service.OAuthService
	Revocations  *revocation.Registry
}

func NewRouter(
	codec *jwtx.Codec,
	cookies *httpx.CookieWriter,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		codec:        codec,
		cookies:      cookies,
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
	r.registerAuth()
	r.registerSessions()
	r.registerAccount()
	r.registerAdmin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) authenticator() *Authenticator {
	return &Authenticator{
		Codec:       r.codec,
		Revocations: r.Revocations,
		Auth:        r.AuthService,
	}
}

// registerAuth mounts the unauthenticated credential endpoints. These carry
// the strict limit to slow brute forcing.
func (r *Router) registerAuth() {
	register := &RegisterHandler{Auth: r.AuthService, Cookies: r.cookies}
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(register,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	login := &LoginHandler{Auth: r.AuthService, Cookies: r.cookies}
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(login,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	oauth := &OAuthHandler{OAuth: r.OAuthService, Cookies: r.cookies}
	r.Mux.Handle("POST /api/auth/apple",
		httpx.Chain(http.HandlerFunc(oauth.HandleApple),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/google",
		httpx.Chain(http.HandlerFunc(oauth.HandleGoogle),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSessions() {
	authn := r.authenticator()

	refresh := &RefreshHandler{Auth: r.AuthService, Cookies: r.cookies}
	r.Mux.Handle("POST /api/auth/refresh",
		httpx.Chain(refresh,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	logout := &LogoutHandler{Auth: r.AuthService, Cookies: r.cookies}
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(http.HandlerFunc(logout.HandleLogout),
			authn.Require,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/logout-all",
		httpx.Chain(http.HandlerFunc(logout.HandleLogoutAll),
			authn.Require,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAccount() {
	authn := r.authenticator()

	account := &AccountHandler{Auth: r.AuthService, Cookies: r.cookies}
	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(http.HandlerFunc(account.HandleMe),
			authn.Require,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /api/auth/account",
		httpx.Chain(http.HandlerFunc(account.HandleDelete),
			authn.Require,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	authn := r.authenticator()

	admin := &AdminHandler{Auth: r.AuthService}
	r.Mux.Handle("POST /api/auth/admin/users/{id}/deactivate",
		httpx.Chain(http.HandlerFunc(admin.HandleDeactivate),
			authn.RequireAdmin,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
