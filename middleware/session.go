package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/AgustinBertolini/e-commerce-daw/session"
)

// SessionCookie names the cookie that ties a browser to its entry.
const SessionCookie = "session_id"

// EntryKey is the gin context key holding the resolved session entry.
const EntryKey = "session_entry"

// ResolveSession looks up (or creates) the session entry for the
// request and makes the cookie stick.
func ResolveSession(manager *session.Manager, maxAge int) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookie)
		entry := manager.GetOrCreate(c.Request.Context(), id)
		if entry.ID != id {
			c.SetCookie(SessionCookie, entry.ID, maxAge, "/", "", false, true)
		}
		c.Set(EntryKey, entry)
		c.Next()
	}
}

// Entry extracts the session entry resolved by ResolveSession.
func Entry(c *gin.Context) *session.Entry {
	return c.MustGet(EntryKey).(*session.Entry)
}
