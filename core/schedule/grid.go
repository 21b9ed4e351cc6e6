package schedule

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/masdens1250/appamine/core"
)

var (
	// errors
	ErrInvalidSlot        = errors.New("invalid slot")
	ErrInvalidSessionType = errors.New("invalid session type")
	ErrSlotTaken          = errors.New("slot already holds a session")
	ErrSessionNotFound    = errors.New("session not found")
	ErrNoSelection        = errors.New("no session selected")
	ErrEditorClosed       = errors.New("session editor is not open")
	ErrDeleteNotRequested = errors.New("delete was not requested")
	ErrInvalidOrdering    = errors.New("invalid ordering field")

	newSessionID = uuid.NewString
)

// Grid is the weekly session grid of one open view.
// At most one session occupies a slot. Not safe for concurrent use.
type Grid struct {
	id       string
	policy   ConflictPolicy
	sessions map[string]*Session
	cells    map[Slot]string // slot -> session id
	order    []string        // creation order

	selectedID        string
	selectedSlot      *Slot
	draft             Draft
	editorOpen        bool
	deleteConfirmOpen bool
}

// NewGrid returns an empty grid with every dialog closed.
func NewGrid(id string, policy ConflictPolicy) *Grid {
	return &Grid{
		id:       id,
		policy:   policy,
		sessions: make(map[string]*Session),
		cells:    make(map[Slot]string),
	}
}

func (g *Grid) ID() string { return g.id }

// OpenCreate opens the editor on an empty slot with a blank draft.
func (g *Grid) OpenCreate(day, time string) error {
	slot, err := NewSlot(day, time)
	if err != nil {
		return err
	}
	if _, taken := g.cells[slot]; taken {
		return errors.Wrapf(ErrSlotTaken, "%s %s", slot.Day, slot.Time)
	}
	g.selectedID = ""
	g.selectedSlot = &slot
	g.draft = newDraft(slot)
	g.editorOpen = true
	g.deleteConfirmOpen = false
	return nil
}

// OpenEdit selects a session and opens the editor on a copy of it.
func (g *Grid) OpenEdit(id string) error {
	s, ok := g.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	slot := s.Slot()
	g.selectedID = id
	g.selectedSlot = &slot
	g.draft = draftOf(*s)
	g.editorOpen = true
	g.deleteConfirmOpen = false
	return nil
}

// Click routes a grid click: an occupied cell opens its session, an empty one opens the create form.
func (g *Grid) Click(day, time string) error {
	slot, err := NewSlot(day, time)
	if err != nil {
		return err
	}
	if id, taken := g.cells[slot]; taken {
		return g.OpenEdit(id)
	}
	return g.OpenCreate(slot.Day, slot.Time)
}

// UpdateDraft applies the editor form inputs. Day and time may change (move via edit).
func (g *Grid) UpdateDraft(dp DraftPatch) error {
	if !g.editorOpen {
		return ErrEditorClosed
	}
	d := g.draft
	if dp.Day != nil {
		day, ok := NormalizeDay(*dp.Day)
		if !ok {
			return errors.Wrapf(ErrInvalidSlot, "unknown day %q", *dp.Day)
		}
		d.Day = day
	}
	if dp.Time != nil {
		t, ok := NormalizeTime(*dp.Time)
		if !ok {
			return errors.Wrapf(ErrInvalidSlot, "unknown time %q", *dp.Time)
		}
		d.Time = t
	}
	if dp.SessionType != nil {
		st, ok := ParseSessionType(*dp.SessionType)
		if !ok {
			return errors.Wrapf(ErrInvalidSessionType, "%q", *dp.SessionType)
		}
		d.SessionType = st
	}
	if dp.Title != nil {
		d.Title = *dp.Title
	}
	if dp.Group != nil {
		d.Group = *dp.Group
	}
	if dp.Description != nil {
		d.Description = *dp.Description
	}
	g.draft = d
	return nil
}

// SaveDraft commits the draft: the selected session is overwritten (edit path) or a new
// session is appended (create path). On success every dialog closes and the selection is cleared.
// It returns the saved session.
func (g *Grid) SaveDraft() (Session, error) {
	if !g.editorOpen {
		return Session{}, ErrEditorClosed
	}
	target, err := NewSlot(g.draft.Day, g.draft.Time)
	if err != nil {
		return Session{}, err
	}

	var edited *Session
	if g.selectedID != "" {
		s, ok := g.sessions[g.selectedID]
		if !ok {
			return Session{}, ErrSessionNotFound
		}
		edited = s
	}

	if occupant, taken := g.cells[target]; taken && (edited == nil || occupant != edited.ID) {
		switch {
		case g.policy == ConflictOverwrite:
			g.remove(occupant)
		case g.policy == ConflictSwap && edited != nil:
			prev := edited.Slot()
			moved := g.sessions[occupant]
			moved.Day, moved.Time = prev.Day, prev.Time
			g.cells[prev] = occupant
		default:
			return Session{}, errors.Wrapf(ErrSlotTaken, "%s %s", target.Day, target.Time)
		}
	}

	var saved Session
	if edited != nil {
		prev := edited.Slot()
		if g.cells[prev] == edited.ID {
			delete(g.cells, prev)
		}
		g.fill(edited, target)
		saved = *edited
	} else {
		s := &Session{ID: newSessionID()}
		g.fill(s, target)
		g.sessions[s.ID] = s
		g.order = append(g.order, s.ID)
		saved = *s
	}
	g.cells[target] = saved.ID

	g.CloseEditor()
	return saved, nil
}

func (g *Grid) fill(s *Session, slot Slot) {
	st := g.draft.SessionType
	if st == "" {
		st = DefaultSessionType
	}
	s.Day = slot.Day
	s.Time = slot.Time
	s.Title = g.draft.Title
	s.Group = g.draft.Group
	s.Description = g.draft.Description
	s.SessionType = st
}

func (g *Grid) remove(id string) {
	s, ok := g.sessions[id]
	if !ok {
		return
	}
	if g.cells[s.Slot()] == id {
		delete(g.cells, s.Slot())
	}
	delete(g.sessions, id)
	for i, oid := range g.order {
		if oid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// CloseEditor dismisses the editor (cancel or close button) and drops the selection.
func (g *Grid) CloseEditor() {
	g.editorOpen = false
	g.selectedID = ""
	g.selectedSlot = nil
	g.draft = Draft{}
}

// RequestDelete swaps the editor for the delete confirmation of the selected session.
func (g *Grid) RequestDelete() error {
	if g.selectedID == "" {
		return ErrNoSelection
	}
	g.editorOpen = false
	g.deleteConfirmOpen = true
	return nil
}

// ConfirmDelete removes the selected session. The confirmation must be open.
func (g *Grid) ConfirmDelete() error {
	if g.selectedID == "" {
		return ErrNoSelection
	}
	if !g.deleteConfirmOpen {
		return ErrDeleteNotRequested
	}
	g.remove(g.selectedID)
	g.deleteConfirmOpen = false
	g.selectedID = ""
	g.selectedSlot = nil
	return nil
}

// CancelDelete closes the confirmation. The selection is kept.
func (g *Grid) CancelDelete() {
	g.deleteConfirmOpen = false
}

// SessionAt returns the session occupying the slot, if any.
func (g *Grid) SessionAt(day, time string) (Session, bool) {
	slot, err := NewSlot(day, time)
	if err != nil {
		return Session{}, false
	}
	id, ok := g.cells[slot]
	if !ok {
		return Session{}, false
	}
	return *g.sessions[id], true
}

// Sessions lists the sessions in creation order, or sorted by the given orderings
// (day, time, title, group, session_type).
func (g *Grid) Sessions(orderings ...core.Ordering) ([]Session, error) {
	out := g.list()
	if len(orderings) == 0 {
		return out, nil
	}
	for _, ord := range orderings {
		if _, ok := sessionComparators[ord.Field]; !ok {
			return nil, errors.Wrapf(ErrInvalidOrdering, "%q", ord.Field)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		for _, ord := range orderings {
			c := sessionComparators[ord.Field](out[i], out[j])
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
	return out, nil
}

func (g *Grid) list() []Session {
	out := make([]Session, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, *g.sessions[id])
	}
	return out
}

var sessionComparators = map[string]func(a, b Session) int{
	"day":          func(a, b Session) int { return dayIndex[a.Day] - dayIndex[b.Day] },
	"time":         func(a, b Session) int { return timeIndex[a.Time] - timeIndex[b.Time] },
	"title":        func(a, b Session) int { return strings.Compare(a.Title, b.Title) },
	"group":        func(a, b Session) int { return strings.Compare(a.Group, b.Group) },
	"session_type": func(a, b Session) int { return strings.Compare(string(a.SessionType), string(b.SessionType)) },
}

// Cells returns the rendering matrix: one row per time slot, one column per weekday.
func (g *Grid) Cells() [][]*Session {
	rows := make([][]*Session, len(TimeSlots))
	for ti, t := range TimeSlots {
		rows[ti] = make([]*Session, len(Weekdays))
		for di, d := range Weekdays {
			if id, ok := g.cells[Slot{Day: d, Time: t}]; ok {
				s := *g.sessions[id]
				rows[ti][di] = &s
			}
		}
	}
	return rows
}

// State is a read-only snapshot of the grid and its dialogs.
type State struct {
	ID                string    `json:"id"`
	Sessions          []Session `json:"sessions"`
	Selected          *Session  `json:"selected"`
	SelectedSlot      *Slot     `json:"selected_slot"`
	Draft             Draft     `json:"draft"`
	EditorOpen        bool      `json:"editor_open"`
	Editing           bool      `json:"editing"` // the editor works on an existing session, delete is offered
	DeleteConfirmOpen bool      `json:"delete_confirm_open"`
}

func (g *Grid) State() State {
	st := State{
		ID:                g.id,
		Draft:             g.draft,
		EditorOpen:        g.editorOpen,
		DeleteConfirmOpen: g.deleteConfirmOpen,
	}
	st.Sessions = g.list()
	if s, ok := g.sessions[g.selectedID]; ok {
		sel := *s
		st.Selected = &sel
		st.Editing = g.editorOpen
	}
	if g.selectedSlot != nil {
		slot := *g.selectedSlot
		st.SelectedSlot = &slot
	}
	return st
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	c := *g
	c.sessions = make(map[string]*Session, len(g.sessions))
	for id, s := range g.sessions {
		sc := *s
		c.sessions[id] = &sc
	}
	c.cells = make(map[Slot]string, len(g.cells))
	for slot, id := range g.cells {
		c.cells[slot] = id
	}
	c.order = append([]string(nil), g.order...)
	if g.selectedSlot != nil {
		slot := *g.selectedSlot
		c.selectedSlot = &slot
	}
	return &c
}
