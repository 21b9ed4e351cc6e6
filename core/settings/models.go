package settings

import (
	"github.com/go-playground/validator/v10"

	"github.com/masdens1250/appamine/core"
)

// Settings are the persisted application settings used to prefill the report forms.
type Settings struct {
	SchoolName    string `json:"school_name" yaml:"school_name" db:"school_name"`
	CounselorName string `json:"counselor_name" yaml:"counselor_name" db:"counselor_name"`
}

// UpdateSettings defines what may be provided to modify the Settings.
// Nil fields keep their current value. An empty value clears the field.
type UpdateSettings struct {
	SchoolName    *string `json:"school_name" validate:"omitempty,max=200"`
	CounselorName *string `json:"counselor_name" validate:"omitempty,max=200"`
}

func (us *UpdateSettings) Validate(validate *validator.Validate) error {
	for _, fld := range []*string{us.SchoolName, us.CounselorName} {
		if fld != nil {
			*fld = core.CleanString(*fld)
		}
	}
	return validate.Struct(us)
}

func (us UpdateSettings) apply(s Settings) Settings {
	if us.SchoolName != nil {
		s.SchoolName = *us.SchoolName
	}
	if us.CounselorName != nil {
		s.CounselorName = *us.CounselorName
	}
	return s
}
