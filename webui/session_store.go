package webui

import (
	"errors"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"report_summarizer/core"
	"report_summarizer/handlers"
)

// SessionCookieName is the cookie carrying the session ID.
const SessionCookieName = "report_session"

// flashTTL bounds how long an outcome waits for the redirected page load.
const flashTTL = 5 * time.Minute

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps one core.ReportSession per browser in memory. A
// session expires after ttl without use.
type SessionStore struct {
	cache   *cache.Cache
	flashes *cache.Cache
	ttl     time.Duration
	secure  bool
}

// NewSessionStore creates a store whose sessions live ttl after last use.
// A non-positive ttl uses core.DefaultSessionDuration.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = core.DefaultSessionDuration
	}
	cleanup := max(ttl/4, time.Minute)
	return &SessionStore{
		cache:   cache.New(ttl, cleanup),
		flashes: cache.New(flashTTL, flashTTL),
		ttl:     ttl,
	}
}

// WithSecureCookie marks the session cookie Secure, for HTTPS deployments.
func (s *SessionStore) WithSecureCookie(secure bool) *SessionStore {
	s.secure = secure
	return s
}

// Create starts a new empty session.
func (s *SessionStore) Create() (*core.ReportSession, error) {
	id, err := core.NewSessionID()
	if err != nil {
		return nil, err
	}
	session := core.NewReportSession(id)
	s.cache.SetDefault(id, session)
	return session, nil
}

// Get returns the session and extends its lifetime.
func (s *SessionStore) Get(id string) (*core.ReportSession, error) {
	if !core.IsValidSessionID(id) {
		return nil, ErrSessionNotFound
	}
	v, found := s.cache.Get(id)
	if !found {
		return nil, ErrSessionNotFound
	}
	session := v.(*core.ReportSession)
	s.cache.SetDefault(id, session)
	return session, nil
}

// Delete removes a session. Unknown IDs are ignored.
func (s *SessionStore) Delete(id string) {
	s.cache.Delete(id)
	s.flashes.Delete(id)
}

// SetFlash keeps an action outcome for the page load that follows a
// redirect.
func (s *SessionStore) SetFlash(id string, out *handlers.Outcome) {
	s.flashes.SetDefault(id, out)
}

// TakeFlash returns and forgets the outcome saved by SetFlash.
func (s *SessionStore) TakeFlash(id string) *handlers.Outcome {
	v, found := s.flashes.Get(id)
	if !found {
		return nil
	}
	s.flashes.Delete(id)
	return v.(*handlers.Outcome)
}

// Count returns the number of live sessions.
func (s *SessionStore) Count() int {
	return s.cache.ItemCount()
}

// Flush drops every session.
func (s *SessionStore) Flush() {
	s.cache.Flush()
	s.flashes.Flush()
}

// Resolve returns the session named by the request cookie, creating one and
// setting the cookie when there is none or it expired.
func (s *SessionStore) Resolve(w http.ResponseWriter, r *http.Request) (*core.ReportSession, error) {
	if c, err := r.Cookie(SessionCookieName); err == nil {
		if session, err := s.Get(c.Value); err == nil {
			return session, nil
		}
	}

	session, err := s.Create()
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return session, nil
}
