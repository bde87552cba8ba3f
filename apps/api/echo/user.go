package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bths-repair/bths-repair-the-world/core/user"
)

type userApi struct {
	svc *user.Service
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *user.Service) {
	api := userApi{svc: svc}

	// detail endpoints; `@me` resolves to the session email. Reads are
	// public for explicit emails, so GET only parses a token when one is
	// sent; `@me` without a session fails inside targetEmailMiddleware.
	dg := g.Group("/users/:email")
	dg.GET("", api.retrieve, optionalJWT(), targetEmailMiddleware())
	dg.POST("", api.create, jwt, targetEmailMiddleware())
	dg.PUT("", api.update, jwt, targetEmailMiddleware())
}

// Handlers

// retrieve returns the member's profile with their referral list. An
// unknown email is not an error: the frontend probes `@me` to decide
// whether to show the registration form, so this responds 200 null.
func (api *userApi) retrieve(ctx echo.Context) error {
	email, err := getTargetEmail(ctx)
	if err != nil {
		return err
	}

	profile, err := api.svc.GetProfile(ctx.Request().Context(), email)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return ctx.JSON(http.StatusOK, nil)
		}
		return errors.Wrap(err, "getting profile")
	}
	return ctx.JSON(http.StatusOK, profile)
}

func (api *userApi) create(ctx echo.Context) error {
	email, err := getTargetEmail(ctx)
	if err != nil {
		return err
	}
	if err := api.checkCanWrite(ctx, email); err != nil {
		return err
	}

	var data user.WriteUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to WriteUser")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, _ := getContextClaims(ctx)
	profile, err := api.svc.Create(ctx.Request().Context(), email, email == claims.Email(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	// plain 200: the frontend treats any other success code as a failure
	return ctx.JSON(http.StatusOK, profile)
}

func (api *userApi) update(ctx echo.Context) error {
	email, err := getTargetEmail(ctx)
	if err != nil {
		return err
	}
	if err := api.checkCanWrite(ctx, email); err != nil {
		return err
	}

	var data user.WriteUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to WriteUser")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	profile, err := api.svc.Update(ctx.Request().Context(), email, data)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, profile)
}

// checkCanWrite gates profile writes: the session email must be
// verified, and writing someone else's profile requires a staff
// position on record.
func (api *userApi) checkCanWrite(ctx echo.Context, target string) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !claims.EmailVerified {
		return errEmailNotVerifd
	}
	if target == claims.Email() {
		return nil
	}

	ctxUsr, err := getContextUser(ctx, api.svc, claims)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpForbidden
		}
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsStaff() {
		return errHttpForbidden
	}
	return nil
}
