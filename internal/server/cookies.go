package server

import (
	"encoding/binary"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	// CookieName carries the numeric user id for browser clients.
	CookieName = "sales_user"
	// CookieMaxAge keeps a browser on the same CRM identity for 30 days.
	CookieMaxAge = 30 * 24 * time.Hour
)

// SetUserCookie sets an HTTP-only cookie holding userID.
func SetUserCookie(w http.ResponseWriter, r *http.Request, userID int64) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    strconv.FormatInt(userID, 10),
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}

// GetUserCookie reads a positive user id from the cookie.
func GetUserCookie(r *http.Request) (int64, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return 0, false
	}
	id, err := strconv.ParseInt(cookie.Value, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// newUserID derives a positive int64 from a random UUID.
func newUserID() int64 {
	u := uuid.New()
	id := int64(binary.BigEndian.Uint64(u[:8]) >> 1)
	if id == 0 {
		return 1
	}
	return id
}

// resolveUserID prefers an explicit id, then the cookie, and otherwise
// assigns a fresh id and sets the cookie.
func resolveUserID(w http.ResponseWriter, r *http.Request, explicit int64) int64 {
	if explicit > 0 {
		return explicit
	}
	if id, ok := GetUserCookie(r); ok {
		return id
	}
	id := newUserID()
	SetUserCookie(w, r, id)
	return id
}
