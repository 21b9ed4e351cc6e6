package echoapi

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/masdens1250/appamine/core"
	"github.com/masdens1250/appamine/core/report"
)

const defaultExportFormat = "html"

type reportApi struct {
	svc           *report.Service
	validate      *validator.Validate
	maxGroupCount int
}

func registerReportAPI(g *echo.Group, svc *report.Service, validate *validator.Validate, maxGroupCount int) {
	api := reportApi{
		svc:           svc,
		validate:      validate,
		maxGroupCount: maxGroupCount,
	}

	rg := g.Group("/reports")
	rg.POST("", api.open)

	dg := rg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PATCH("", api.update)
	dg.DELETE("", api.close)
	dg.PUT("/rows/:index", api.editRow)
	dg.POST("/preview", api.openPreview)
	dg.DELETE("/preview", api.closePreview)
	dg.GET("/export", api.export)
}

// Handlers

func (api *reportApi) open(ctx echo.Context) error {
	r, err := api.svc.Open(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "opening report")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *reportApi) retrieve(ctx echo.Context) error {
	r, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting report")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *reportApi) update(ctx echo.Context) error {
	var data report.UpdateReport
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateReport")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if data.GroupCount != nil && api.maxGroupCount > 0 && report.ParseGroupCount(string(*data.GroupCount)) > api.maxGroupCount {
		capped := report.RawValue(strconv.Itoa(api.maxGroupCount))
		data.GroupCount = &capped
	}

	r, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating report")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *reportApi) editRow(ctx echo.Context) error {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "index", Error: "must be an integer"})
	}
	var data report.EditRow
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EditRow")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.EditRow(ctx.Request().Context(), ctx.Param("id"), index, data)
	if err != nil {
		return errors.Wrap(err, "editing coverage row")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *reportApi) openPreview(ctx echo.Context) error {
	r, err := api.svc.OpenPreview(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "opening preview")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *reportApi) closePreview(ctx echo.Context) error {
	r, err := api.svc.ClosePreview(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "closing preview")
	}
	return ctx.JSON(http.StatusOK, r)
}

// export answers 204 without a body when the document could not be produced.
func (api *reportApi) export(ctx echo.Context) error {
	format := ctx.QueryParam("format")
	if format == "" {
		format = defaultExportFormat
	}

	doc, ok, err := api.svc.Export(ctx.Request().Context(), ctx.Param("id"), format)
	if err != nil {
		return errors.Wrap(err, "exporting report")
	}
	if !ok {
		return ctx.NoContent(http.StatusNoContent)
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	return ctx.Blob(http.StatusOK, doc.ContentType, doc.Body)
}

func (api *reportApi) close(ctx echo.Context) error {
	if err := api.svc.Close(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "closing report")
	}
	return ctx.NoContent(http.StatusNoContent)
}
