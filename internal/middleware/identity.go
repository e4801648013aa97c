package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userID returns a stable identifier for the authenticated caller, taken
// from the "user_id" context value set by JWTAuth. Unauthenticated requests
// map to "guest". Used by cache and rate-limit key strategies that partition
// per user.
func userID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		// JSON-decoded JWT claims arrive as float64.
		return strconv.FormatUint(uint64(v), 10)
	}
	return "guest"
}
