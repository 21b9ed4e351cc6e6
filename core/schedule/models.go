package schedule

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

var (
	// Weekdays are the grid columns, in display order.
	Weekdays = []string{"الأحد", "الاثنين", "الثلاثاء", "الأربعاء", "الخميس"}
	// TimeSlots are the grid rows, in display order.
	TimeSlots = []string{"08:00", "09:30", "11:00", "13:30", "15:00"}

	dayIndex  = indexOf(Weekdays)
	timeIndex = indexOf(TimeSlots)
)

func indexOf(values []string) map[string]int {
	idx := make(map[string]int, len(values))
	for i, v := range values {
		idx[norm.NFC.String(v)] = i
	}
	return idx
}

func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// NormalizeDay returns the canonical spelling of a weekday label.
func NormalizeDay(s string) (string, bool) {
	i, ok := dayIndex[normalize(s)]
	if !ok {
		return "", false
	}
	return Weekdays[i], true
}

// NormalizeTime returns the canonical spelling of a time slot label.
func NormalizeTime(s string) (string, bool) {
	i, ok := timeIndex[normalize(s)]
	if !ok {
		return "", false
	}
	return TimeSlots[i], true
}

type SessionType string

const (
	Individual SessionType = "individual"
	Group      SessionType = "group"

	DefaultSessionType = Group
)

var (
	SessionTypes = []SessionType{Individual, Group}

	sessionTypeLabels = map[SessionType]string{
		Individual: "جلسة فردية",
		Group:      "جلسة جماعية",
	}
)

func (st SessionType) Label() string {
	return sessionTypeLabels[st]
}

// ParseSessionType accepts a session type code or its display label.
func ParseSessionType(s string) (SessionType, bool) {
	s = normalize(s)
	for _, st := range SessionTypes {
		if s == string(st) || s == norm.NFC.String(st.Label()) {
			return st, true
		}
	}
	return "", false
}

// Slot is one cell of the grid.
type Slot struct {
	Day  string `json:"day"`
	Time string `json:"time"`
}

// NewSlot validates and normalises a (day, time) pair.
func NewSlot(day, time string) (Slot, error) {
	d, ok := NormalizeDay(day)
	if !ok {
		return Slot{}, errors.Wrapf(ErrInvalidSlot, "unknown day %q", day)
	}
	t, ok := NormalizeTime(time)
	if !ok {
		return Slot{}, errors.Wrapf(ErrInvalidSlot, "unknown time %q", time)
	}
	return Slot{Day: d, Time: t}, nil
}

// Session is a counseling session placed in the grid.
type Session struct {
	ID          string      `json:"id"`
	Day         string      `json:"day"`
	Time        string      `json:"time"`
	Title       string      `json:"title"`
	Group       string      `json:"group"`
	Description string      `json:"description"`
	SessionType SessionType `json:"session_type"`
}

func (s Session) Slot() Slot {
	return Slot{Day: s.Day, Time: s.Time}
}

// Draft holds the editor form values.
type Draft struct {
	Day         string      `json:"day"`
	Time        string      `json:"time"`
	Title       string      `json:"title"`
	Group       string      `json:"group"`
	Description string      `json:"description"`
	SessionType SessionType `json:"session_type"`
}

func newDraft(slot Slot) Draft {
	return Draft{Day: slot.Day, Time: slot.Time, SessionType: DefaultSessionType}
}

func draftOf(s Session) Draft {
	return Draft{
		Day:         s.Day,
		Time:        s.Time,
		Title:       s.Title,
		Group:       s.Group,
		Description: s.Description,
		SessionType: s.SessionType,
	}
}

func (d Draft) Slot() Slot {
	return Slot{Day: d.Day, Time: d.Time}
}

// DraftPatch is a partial edit of the draft. Nil fields are left untouched.
type DraftPatch struct {
	Day         *string `json:"day" validate:"omitempty,weekday"`
	Time        *string `json:"time" validate:"omitempty,timeslot"`
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Group       *string `json:"group" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	SessionType *string `json:"session_type" validate:"omitempty,sessiontype"`
}

func (dp *DraftPatch) Validate(validate *validator.Validate) error {
	return validate.Struct(dp)
}

// SlotInput is a (day, time) pair as sent by clients.
type SlotInput struct {
	Day  string `json:"day" query:"day" validate:"required,weekday"`
	Time string `json:"time" query:"time" validate:"required,timeslot"`
}

func (si *SlotInput) Validate(validate *validator.Validate) error {
	return validate.Struct(si)
}

// ConflictPolicy decides what saving a draft onto an occupied slot does.
type ConflictPolicy int

const (
	// ConflictReject refuses the save, nothing changes and the editor stays open.
	ConflictReject ConflictPolicy = iota
	// ConflictOverwrite removes the occupant.
	ConflictOverwrite
	// ConflictSwap moves the occupant to the edited session's previous slot.
	// Creating a session has no previous slot, so it is rejected.
	ConflictSwap
)

var conflictPolicies = map[string]ConflictPolicy{
	"reject":    ConflictReject,
	"overwrite": ConflictOverwrite,
	"swap":      ConflictSwap,
}

func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	if s == "" {
		return ConflictReject, nil
	}
	p, ok := conflictPolicies[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return ConflictReject, errors.Errorf("unknown conflict policy %q", s)
	}
	return p, nil
}

func (p ConflictPolicy) String() string {
	for name, v := range conflictPolicies {
		if v == p {
			return name
		}
	}
	return "unknown"
}
