package httpapi

import (
	"net/http"

	"github.com/otpgate/otpgate"
	"github.com/otpgate/otpgate/internal"
)

// handleGoogleRedirect starts the handshake: a fresh state token keys the
// nonce in the state cache, and both ride the authorization URL.
func (s *Server) handleGoogleRedirect(w http.ResponseWriter, r *http.Request) {
	state, err := internal.NewStateToken()
	if err != nil {
		writeServerError(w)
		return
	}
	nonce, err := internal.NewStateToken()
	if err != nil {
		writeServerError(w)
		return
	}
	s.oauthStates.SetDefault(state, nonce)

	authURL, err := s.cfg.Google.AuthURL(r.Context(), state, nonce)
	if err != nil {
		writeServerError(w)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleGoogleCallback finishes the handshake and sends the browser back
// to the frontend: the failure page on any rejection, the success page with
// the session cookie pair otherwise.
func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		http.Redirect(w, r, s.cfg.GoogleFailureURL, http.StatusFound)
		return
	}

	// One-shot: a replayed callback finds no state.
	nonceVal, ok := s.oauthStates.Get(state)
	if !ok {
		http.Redirect(w, r, s.cfg.GoogleFailureURL, http.StatusFound)
		return
	}
	s.oauthStates.Delete(state)
	nonce, _ := nonceVal.(string)

	identity, err := s.cfg.Google.Exchange(r.Context(), code, nonce)
	if err != nil {
		http.Redirect(w, r, s.cfg.GoogleFailureURL, http.StatusFound)
		return
	}

	_, pair, err := s.engine.AuthenticateFederated(r.Context(), otpgate.FederatedProfile{
		Email:    identity.Email,
		Name:     identity.Name,
		Provider: otpgate.AccountGoogle,
	})
	if err != nil {
		http.Redirect(w, r, s.cfg.GoogleFailureURL, http.StatusFound)
		return
	}

	// Lax, not Strict: these cookies must survive the cross-site redirect
	// chain that brought the browser here.
	s.setSessionCookiesLax(w, pair)
	http.Redirect(w, r, s.cfg.GoogleSuccessURL, http.StatusFound)
}
