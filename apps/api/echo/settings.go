package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/masdens1250/appamine/core/report"
	"github.com/masdens1250/appamine/core/schedule"
	"github.com/masdens1250/appamine/core/settings"
)

type settingsApi struct {
	svc *settings.Service
}

// settings are read-only over HTTP, the admin CLI writes them
func registerSettingsAPI(g *echo.Group, svc *settings.Service) {
	api := settingsApi{svc: svc}
	g.GET("/settings", api.retrieve)
}

func (api *settingsApi) retrieve(ctx echo.Context) error {
	s, err := api.svc.Get(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting settings")
	}
	return ctx.JSON(http.StatusOK, s)
}

type (
	SessionTypeLabel struct {
		Code  schedule.SessionType `json:"code"`
		Label string               `json:"label"`
	}

	Vocabulary struct {
		Weekdays       []string           `json:"weekdays"`
		TimeSlots      []string           `json:"time_slots"`
		SessionTypes   []SessionTypeLabel `json:"session_types"`
		ExportFormats  []string           `json:"export_formats"`
		ConflictPolicy string             `json:"conflict_policy"` // what saving onto an occupied slot does
	}
)

func registerVocabularyAPI(g *echo.Group, reportSvc *report.Service, scheduleSvc *schedule.Service) {
	vocab := Vocabulary{
		Weekdays:       schedule.Weekdays,
		TimeSlots:      schedule.TimeSlots,
		ExportFormats:  reportSvc.Formats(),
		ConflictPolicy: scheduleSvc.Policy().String(),
	}
	for _, st := range schedule.SessionTypes {
		vocab.SessionTypes = append(vocab.SessionTypes, SessionTypeLabel{Code: st, Label: st.Label()})
	}

	g.GET("/vocabulary", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, vocab)
	})
}
