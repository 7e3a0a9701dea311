package httpapi

import (
	"net/http"

	"github.com/otpgate/otpgate"
)

const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
)

// setSessionCookies installs both session credentials as HttpOnly
// SameSite=Strict cookies. Secure is dropped only in dev mode.
func (s *Server) setSessionCookies(w http.ResponseWriter, pair otpgate.SessionPair) {
	s.writeSessionCookies(w, pair, http.SameSiteStrictMode)
}

// setSessionCookiesLax is the cross-site variant for the OAuth callback:
// the browser arrives via a redirect from the provider, and Strict cookies
// would be dropped on the hop back to the frontend.
func (s *Server) setSessionCookiesLax(w http.ResponseWriter, pair otpgate.SessionPair) {
	s.writeSessionCookies(w, pair, http.SameSiteLaxMode)
}

func (s *Server) writeSessionCookies(w http.ResponseWriter, pair otpgate.SessionPair, sameSite http.SameSite) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(s.cfg.AccessTTL.Seconds()),
		HttpOnly: true,
		Secure:   !s.cfg.Dev,
		SameSite: sameSite,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(s.cfg.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   !s.cfg.Dev,
		SameSite: sameSite,
	})
}

func (s *Server) setAccessCookie(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(s.cfg.AccessTTL.Seconds()),
		HttpOnly: true,
		Secure:   !s.cfg.Dev,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{accessCookieName, refreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   !s.cfg.Dev,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
