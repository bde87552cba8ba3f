package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bths-repair/bths-repair-the-world/core"
	"github.com/bths-repair/bths-repair-the-world/core/user"
)

type verifyEmailApi struct {
	svc *user.Service
}

func registerVerifyEmailAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *user.Service) {
	api := verifyEmailApi{svc: svc}

	vg := g.Group("/verify-email")
	vg.POST("", api.resend, jwt)
	vg.GET("/confirm", api.confirm) // linked from the email; un-authed
}

// Handlers

func (api *verifyEmailApi) resend(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.RequestVerification(ctx.Request().Context(), claims.Email()); err != nil {
		if errors.Cause(err) == user.ErrResendTooHot {
			return errResendCooldown
		}
		return errors.Wrap(err, "requesting verification")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "A verification email is on its way. Check your inbox (and spam folder).",
	})
}

func (api *verifyEmailApi) confirm(ctx echo.Context) error {
	uid := ctx.QueryParam("uid")
	token := ctx.QueryParam("token")
	if uid == "" || token == "" {
		return core.NewValidationError(errors.New("uid and token are required"))
	}

	if err := api.svc.ConfirmVerification(ctx.Request().Context(), uid, token); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "confirming verification")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Email verified. Welcome aboard!"})
}

type SuccessResponse struct {
	Success string `json:"success"`
}
