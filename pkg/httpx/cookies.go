package httpx

import (
	"net/http"
	"time"
)

// Cookie names the mobile and web clients read.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// CookieWriter sets and clears the auth cookie pair. Production tightens
// Secure and SameSite; development keeps Lax so local HTTP flows work.
type CookieWriter struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Production bool
}

// SetAuthCookies attaches both tokens as HttpOnly cookies alongside the
// JSON body.
func (c CookieWriter) SetAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, c.cookie(AccessTokenCookie, accessToken, c.AccessTTL))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, refreshToken, c.RefreshTTL))
}

// ClearAuthCookies expires both cookies.
func (c CookieWriter) ClearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(AccessTokenCookie, "", -time.Second))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, "", -time.Second))
}

func (c CookieWriter) cookie(name, value string, ttl time.Duration) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if c.Production {
		sameSite = http.SameSiteStrictMode
	}
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Production,
		SameSite: sameSite,
	}
}

// BearerOrCookie extracts a token from the Authorization header, falling
// back to the named cookie. Returns "" when neither is present.
func BearerOrCookie(r *http.Request, cookieName string) string {
	if authz := r.Header.Get("Authorization"); len(authz) > 7 && authz[:7] == "Bearer " {
		return authz[7:]
	}
	if ck, err := r.Cookie(cookieName); err == nil {
		return ck.Value
	}
	return ""
}
