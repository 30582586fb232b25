// Package credentials finds the session cookie used to query the Cursor
// usage API. Sources are tried in a fixed order: the Cursor IDE's local
// state database, the manually stored token, then an interactive prompt.
package credentials

import (
	"context"
	"log"
	"strings"
)

// CookieName is the session cookie the dashboard API authenticates with.
const CookieName = "WorkosCursorSessionToken"

const cookiePrefix = CookieName + "="

// TokenStore persists the manually configured token.
type TokenStore interface {
	SessionToken() string
	SaveSessionToken(token string) error
}

// Prompter asks the user for a raw token. An empty string with a nil error
// means the user declined.
type Prompter interface {
	PromptToken(ctx context.Context) (string, error)
}

type Resolver struct {
	// StateDBPath overrides the platform default location of state.vscdb.
	StateDBPath string
	// Override takes the place of the stored manual value when non-empty.
	Override string
	Store    TokenStore
	Prompt   Prompter
}

// WithoutPrompt returns a copy that never asks the user. Periodic refreshes
// use it so a timer tick cannot block on terminal input.
func (r *Resolver) WithoutPrompt() *Resolver {
	cp := *r
	cp.Prompt = nil
	return &cp
}

// Resolve returns the credential to send as the Cookie header, or false when
// no source produced one. Having no credential is not an error.
func (r *Resolver) Resolve(ctx context.Context) (string, bool) {
	if cred, ok := r.discover(ctx); ok {
		return cred, true
	}
	if cred, ok := r.manual(); ok {
		return cred, true
	}
	if cred, ok := r.prompt(ctx); ok {
		return cred, true
	}
	return "", false
}

func (r *Resolver) discover(ctx context.Context) (string, bool) {
	path := r.StateDBPath
	if path == "" {
		path = DefaultStateDBPath()
	}
	if path == "" {
		return "", false
	}
	cred, err := SessionCookieFromStateDB(ctx, path)
	if err != nil {
		log.Printf("[credentials] auto-discovery unavailable: %v", err)
		return "", false
	}
	return cred, true
}

func (r *Resolver) manual() (string, bool) {
	token := r.Override
	if token == "" && r.Store != nil {
		token = r.Store.SessionToken()
	}
	cred := NormalizeCredential(token)
	return cred, cred != ""
}

func (r *Resolver) prompt(ctx context.Context) (string, bool) {
	if r.Prompt == nil {
		return "", false
	}
	raw, err := r.Prompt.PromptToken(ctx)
	if err != nil {
		log.Printf("[credentials] prompt failed: %v", err)
		return "", false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if r.Store != nil {
		if err := r.Store.SaveSessionToken(raw); err != nil {
			log.Printf("[credentials] saving prompted token: %v", err)
		}
	}
	return NormalizeCredential(raw), true
}

// SessionCookieFromStateDB builds the session cookie from the access token
// the Cursor IDE stores locally.
func SessionCookieFromStateDB(ctx context.Context, path string) (string, error) {
	token, err := readAccessToken(ctx, path)
	if err != nil {
		return "", err
	}
	token = strings.TrimSpace(token)
	userID, err := userIDFromToken(token)
	if err != nil {
		return "", err
	}
	return cookiePrefix + userID + "%3A%3A" + token, nil
}

// NormalizeCredential trims the value and guarantees the cookie-name prefix.
// Empty input stays empty.
func NormalizeCredential(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(token, cookiePrefix) {
		return token
	}
	return cookiePrefix + token
}

// Redact shortens a credential for display.
func Redact(cred string) string {
	value := strings.TrimPrefix(cred, cookiePrefix)
	if len(value) > 12 {
		value = value[:6] + "..." + value[len(value)-4:]
	} else if value != "" {
		value = "****"
	}
	return cookiePrefix + value
}
