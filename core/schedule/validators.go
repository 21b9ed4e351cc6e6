package schedule

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/masdens1250/appamine/core"
)

var (
	// custom validation tags & texts
	weekdayTag      = "weekday"
	timeSlotTag     = "timeslot"
	sessionTypeTag  = "sessiontype"
	weekdayText     = "must be one of: " + strings.Join(Weekdays, ", ")
	timeSlotText    = "must be one of: " + strings.Join(TimeSlots, ", ")
	sessionTypeText = "must be one of: individual, group"
)

// InitValidators registers the grid vocabulary validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(weekdayTag, weekdayValidation)
	core.RegisterCustomTranslation(validate, translator, weekdayTag, weekdayText)

	_ = validate.RegisterValidation(timeSlotTag, timeSlotValidation)
	core.RegisterCustomTranslation(validate, translator, timeSlotTag, timeSlotText)

	_ = validate.RegisterValidation(sessionTypeTag, sessionTypeValidation)
	core.RegisterCustomTranslation(validate, translator, sessionTypeTag, sessionTypeText)
}

func weekdayValidation(fl validator.FieldLevel) bool {
	_, ok := NormalizeDay(fl.Field().String())
	return ok
}

func timeSlotValidation(fl validator.FieldLevel) bool {
	_, ok := NormalizeTime(fl.Field().String())
	return ok
}

func sessionTypeValidation(fl validator.FieldLevel) bool {
	_, ok := ParseSessionType(fl.Field().String())
	return ok
}
