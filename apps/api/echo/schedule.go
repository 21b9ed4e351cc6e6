package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/masdens1250/appamine/core/schedule"
)

type scheduleApi struct {
	svc      *schedule.Service
	validate *validator.Validate
}

// ScheduleView is a grid state along with its rendering matrix.
type ScheduleView struct {
	schedule.State
	Cells [][]*schedule.Session `json:"cells"`
}

func registerScheduleAPI(g *echo.Group, svc *schedule.Service, validate *validator.Validate) {
	api := scheduleApi{
		svc:      svc,
		validate: validate,
	}

	sg := g.Group("/schedules")
	sg.POST("", api.open)

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.DELETE("", api.close)
	dg.GET("/sessions", api.querySessions)
	dg.GET("/cell", api.sessionAt)
	dg.POST("/cell", api.click)
	dg.POST("/sessions/:sid/edit", api.openEdit)
	dg.PUT("/draft", api.updateDraft)
	dg.POST("/draft/save", api.saveDraft)
	dg.DELETE("/draft", api.closeEditor)
	dg.POST("/delete/request", api.requestDelete)
	dg.POST("/delete/confirm", api.confirmDelete)
	dg.POST("/delete/cancel", api.cancelDelete)
}

// Handlers

func (api *scheduleApi) open(ctx echo.Context) error {
	st, err := api.svc.Open(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "opening schedule")
	}
	return ctx.JSON(http.StatusCreated, st)
}

func (api *scheduleApi) retrieve(ctx echo.Context) error {
	id := ctx.Param("id")
	st, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting schedule")
	}
	cells, err := api.svc.Cells(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting schedule cells")
	}
	return ctx.JSON(http.StatusOK, ScheduleView{State: st, Cells: cells})
}

func (api *scheduleApi) querySessions(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)

	sessions, err := api.svc.Sessions(ctx.Request().Context(), ctx.Param("id"), ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *scheduleApi) bindSlot(ctx echo.Context) (schedule.SlotInput, error) {
	var data schedule.SlotInput
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to SlotInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return data, err
	}
	return data, nil
}

func (api *scheduleApi) sessionAt(ctx echo.Context) error {
	slot, err := api.bindSlot(ctx)
	if err != nil {
		return err
	}
	s, err := api.svc.SessionAt(ctx.Request().Context(), ctx.Param("id"), slot)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *scheduleApi) click(ctx echo.Context) error {
	slot, err := api.bindSlot(ctx)
	if err != nil {
		return err
	}
	st, err := api.svc.Click(ctx.Request().Context(), ctx.Param("id"), slot)
	if err != nil {
		return errors.Wrap(err, "clicking cell")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *scheduleApi) openEdit(ctx echo.Context) error {
	st, err := api.svc.OpenEdit(ctx.Request().Context(), ctx.Param("id"), ctx.Param("sid"))
	if err != nil {
		return errors.Wrap(err, "opening session editor")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *scheduleApi) updateDraft(ctx echo.Context) error {
	var data schedule.DraftPatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DraftPatch")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	st, err := api.svc.UpdateDraft(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating draft")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *scheduleApi) saveDraft(ctx echo.Context) error {
	st, err := api.svc.SaveDraft(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "saving draft")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *scheduleApi) closeEditor(ctx echo.Context) error {
	st, err := api.svc.CloseEditor(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "closing editor")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *scheduleApi) requestDelete(ctx echo.Context) error {
	st, err := api.svc.RequestDelete(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "requesting delete")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *scheduleApi) confirmDelete(ctx echo.Context) error {
	st, err := api.svc.ConfirmDelete(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "confirming delete")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *scheduleApi) cancelDelete(ctx echo.Context) error {
	st, err := api.svc.CancelDelete(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "cancelling delete")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *scheduleApi) close(ctx echo.Context) error {
	if err := api.svc.Close(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "closing schedule")
	}
	return ctx.NoContent(http.StatusNoContent)
}
