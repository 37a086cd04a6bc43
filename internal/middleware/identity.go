// Package middleware contains reusable HTTP middleware: optional
// identity attribution, Redis response caching and rate limiting.
package middleware

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/blood-uber/server/internal/utils"
)

// Identity parses an optional Bearer identity token and stores the
// user's id and account type in the request context under "user_id"
// and "user_type". Requests without a token, or with an invalid one,
// proceed as anonymous; endpoints stay open and the identity only
// feeds attribution and rate-limit keying.
func Identity(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				raw := strings.TrimPrefix(auth, "Bearer ")
				if uid, utype, err := utils.ParseIdentityToken(secret, raw); err == nil {
					c.Set("user_id", uid)
					c.Set("user_type", utype)
				}
			}
			return next(c)
		}
	}
}

// currentUserID returns the authenticated user's id as a string for
// rate-limit keying, or "anon" for anonymous requests.
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if id, ok := v.(uint64); ok {
			return strconv.FormatUint(id, 10)
		}
	}
	return "anon"
}
