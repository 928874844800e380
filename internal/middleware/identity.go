package middleware

// identity.go centralizes how middleware derives a stable caller
// identity from the context. JWTAuth stores the raw "sub" claim, which
// the JWT library decodes as a float64 for numeric subjects, so the
// helpers here normalize every representation to a string before it is
// used in rate-limit or cache keys.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// subjectID returns the authenticated user's identifier as a string, or
// "anon" when the request carries no usable identity.
func subjectID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	}
	return "anon"
}
