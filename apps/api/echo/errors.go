package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/masdens1250/appamine/core"
	"github.com/masdens1250/appamine/core/report"
	"github.com/masdens1250/appamine/core/schedule"
)

// domainErrors maps the domain sentinel errors to their HTTP status.
var domainErrors = map[error]int{
	report.ErrNotFound:             http.StatusNotFound,
	report.ErrRowOutOfRange:        http.StatusBadRequest,
	report.ErrUnknownField:         http.StatusBadRequest,
	report.ErrUnknownFormat:        http.StatusBadRequest,
	schedule.ErrNotFound:           http.StatusNotFound,
	schedule.ErrSessionNotFound:    http.StatusNotFound,
	schedule.ErrInvalidSlot:        http.StatusBadRequest,
	schedule.ErrInvalidSessionType: http.StatusBadRequest,
	schedule.ErrInvalidOrdering:    http.StatusBadRequest,
	schedule.ErrSlotTaken:          http.StatusConflict,
	schedule.ErrNoSelection:        http.StatusConflict,
	schedule.ErrEditorClosed:       http.StatusConflict,
	schedule.ErrDeleteNotRequested: http.StatusConflict,
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			if status, ok := domainErrors[cause]; ok {
				code = status
				message = err.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			logger.Error(msg, errors.Wrap(err, msg), ctx.Request())

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
