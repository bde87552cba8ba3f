package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bths-repair/bths-repair-the-world/core"
	"github.com/bths-repair/bths-repair-the-world/core/user"
)

const (
	meSentinel            = "@me"
	contextTargetEmailKey = "targetEmail"
)

// targetEmailMiddleware resolves the `:email` path param before handler
// logic runs: `@me` becomes the session email, anything else is cleaned
// and stored as-is. Handlers read the result via getTargetEmail.
func targetEmailMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			email := core.CleanString(ctx.Param("email"), true /* lower */)
			if email == "" {
				return errMissingEmail
			}
			if email == meSentinel {
				claims, err := getContextClaims(ctx)
				if err != nil {
					return errors.Wrap(err, "getting context claims")
				}
				email = core.CleanString(claims.Email(), true /* lower */)
			}
			ctx.Set(contextTargetEmailKey, email)
			return next(ctx)
		}
	}
}

func getTargetEmail(ctx echo.Context) (string, error) {
	if email, ok := ctx.Get(contextTargetEmailKey).(string); ok {
		return email, nil
	}
	return "", errMissingEmail
}

// staffMiddleware restricts a route to exec/admin members. The position
// is read from the database on every request so demotions bite
// immediately, token or not.
func staffMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					return errHttpForbidden
				}
				return errors.Wrap(err, "getting context user")
			}
			if usr.IsStaff() {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
