package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bths-repair/bths-repair-the-world/core"
	"github.com/bths-repair/bths-repair-the-world/core/event"
	"github.com/bths-repair/bths-repair-the-world/core/user"
)

type eventApi struct {
	svc *event.Service
}

func registerEventAPI(g *echo.Group, jwt echo.MiddlewareFunc, usrSvc *user.Service, svc *event.Service) {
	api := eventApi{svc: svc}
	staff := staffMiddleware(usrSvc)

	eg := g.Group("/events")

	// un-authed endpoints: the public site lists events
	eg.GET("", api.query)
	eg.GET("/:id", api.retrieve)

	// staff lifecycle
	eg.POST("", api.create, jwt, staff)
	eg.PUT("/:id", api.update, jwt, staff)
	eg.DELETE("/:id", api.destroy, jwt, staff)

	// attendance
	ag := eg.Group("/:id/attendance", jwt)
	ag.GET("/@me", api.retrieveMyAttendance)
	ag.POST("/@me", api.join)
	ag.DELETE("/@me", api.leave)
	ag.GET("", api.roster, staff)
	ag.PUT("/:email", api.markAttended, staff)
}

// Handlers

func (api *eventApi) query(ctx echo.Context) error {
	events, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	if events == nil {
		events = []event.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *eventApi) retrieve(ctx echo.Context) error {
	ev, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == event.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting event")
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *eventApi) create(ctx echo.Context) error {
	var data event.WriteEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to WriteEvent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ev, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *eventApi) update(ctx echo.Context) error {
	var data event.WriteEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to WriteEvent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ev, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == event.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating event")
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *eventApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == event.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting event")
	}
	// the frontend only accepts a 200 here
	return ctx.JSON(http.StatusOK, nil)
}

// retrieveMyAttendance responds 200 null when the caller has not
// joined; the frontend uses it to render the join/leave button state.
func (api *eventApi) retrieveMyAttendance(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	att, err := api.svc.GetAttendance(ctx.Request().Context(), ctx.Param("id"), claims.Email())
	if err != nil {
		if errors.Cause(err) == event.ErrAttendanceNotFound {
			return ctx.JSON(http.StatusOK, nil)
		}
		return errors.Wrap(err, "getting attendance")
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *eventApi) join(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	att, err := api.svc.Join(ctx.Request().Context(), ctx.Param("id"), claims.Email())
	if err != nil {
		switch errors.Cause(err) {
		case event.ErrNotFound:
			return errHttpNotFound
		case event.ErrEventPassed, event.ErrAlreadyJoined:
			return core.NewValidationError(errors.Cause(err))
		}
		return errors.Wrap(err, "joining event")
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *eventApi) leave(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Leave(ctx.Request().Context(), ctx.Param("id"), claims.Email()); err != nil {
		switch errors.Cause(err) {
		case event.ErrNotFound, event.ErrAttendanceNotFound:
			return errHttpNotFound
		case event.ErrEventPassed:
			return core.NewValidationError(errors.Cause(err))
		}
		return errors.Wrap(err, "leaving event")
	}
	return ctx.JSON(http.StatusOK, nil)
}

func (api *eventApi) roster(ctx echo.Context) error {
	atts, err := api.svc.QueryAttendance(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == event.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying attendance")
	}
	if atts == nil {
		atts = []event.Attendance{}
	}
	return ctx.JSON(http.StatusOK, atts)
}

func (api *eventApi) markAttended(ctx echo.Context) error {
	var data event.MarkAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkAttendance")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	email := core.CleanString(ctx.Param("email"), true /* lower */)
	att, err := api.svc.MarkAttended(ctx.Request().Context(), ctx.Param("id"), email, data)
	if err != nil {
		switch errors.Cause(err) {
		case event.ErrNotFound, event.ErrAttendanceNotFound:
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusOK, att)
}
