package schedule

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/masdens1250/appamine/core"
)

var (
	// errors
	ErrNotFound = errors.New("schedule not found")
)

type (
	// Repository holds the open schedule views.
	Repository interface {
		CreateGrid(ctx context.Context, g *Grid) error
		// GetGrid returns a copy of the stored grid.
		GetGrid(ctx context.Context, id string) (*Grid, error)
		// UpdateGrid runs fn on the stored grid, atomically with respect to every other
		// call on the same view, and returns a copy of the result.
		// The grid is left untouched when fn fails.
		UpdateGrid(ctx context.Context, id string, fn func(g *Grid) error) (*Grid, error)
		DeleteGrid(ctx context.Context, id string) error
		CountGrids(ctx context.Context) int
	}

	// Recorder receives session saves (metrics).
	Recorder interface {
		IncSave(policy string, outcome string)
	}

	Service struct {
		repo     Repository
		logger   core.Logger
		policy   ConflictPolicy
		recorder Recorder
	}
)

func NewService(repo Repository, logger core.Logger, policy ConflictPolicy) *Service {
	return &Service{repo: repo, logger: logger, policy: policy}
}

// SetRecorder plugs a metrics recorder in.
func (svc *Service) SetRecorder(rec Recorder) { svc.recorder = rec }

func (svc *Service) Policy() ConflictPolicy { return svc.policy }

// Open mounts a new, empty schedule view.
func (svc *Service) Open(ctx context.Context) (State, error) {
	g := NewGrid(uuid.NewString(), svc.policy)
	if err := svc.repo.CreateGrid(ctx, g); err != nil {
		return State{}, errors.Wrap(err, "creating schedule view")
	}
	return g.State(), nil
}

func (svc *Service) Get(ctx context.Context, id string) (State, error) {
	g, err := svc.repo.GetGrid(ctx, id)
	if err != nil {
		return State{}, err
	}
	return g.State(), nil
}

func (svc *Service) Sessions(ctx context.Context, id string, orderings ...core.Ordering) ([]Session, error) {
	g, err := svc.repo.GetGrid(ctx, id)
	if err != nil {
		return nil, err
	}
	return g.Sessions(orderings...)
}

func (svc *Service) Cells(ctx context.Context, id string) ([][]*Session, error) {
	g, err := svc.repo.GetGrid(ctx, id)
	if err != nil {
		return nil, err
	}
	return g.Cells(), nil
}

// SessionAt returns ErrSessionNotFound when the slot is empty.
func (svc *Service) SessionAt(ctx context.Context, id string, slot SlotInput) (Session, error) {
	g, err := svc.repo.GetGrid(ctx, id)
	if err != nil {
		return Session{}, err
	}
	s, ok := g.SessionAt(slot.Day, slot.Time)
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (svc *Service) Click(ctx context.Context, id string, slot SlotInput) (State, error) {
	return svc.update(ctx, id, func(g *Grid) error { return g.Click(slot.Day, slot.Time) })
}

func (svc *Service) OpenEdit(ctx context.Context, id, sessionID string) (State, error) {
	return svc.update(ctx, id, func(g *Grid) error { return g.OpenEdit(sessionID) })
}

func (svc *Service) UpdateDraft(ctx context.Context, id string, dp DraftPatch) (State, error) {
	return svc.update(ctx, id, func(g *Grid) error { return g.UpdateDraft(dp) })
}

func (svc *Service) SaveDraft(ctx context.Context, id string) (State, error) {
	st, err := svc.update(ctx, id, func(g *Grid) error {
		_, err := g.SaveDraft()
		return err
	})
	if svc.recorder != nil {
		outcome := "saved"
		switch errors.Cause(err) {
		case nil:
		case ErrSlotTaken:
			outcome = "conflict"
		default:
			outcome = "failed"
		}
		svc.recorder.IncSave(svc.policy.String(), outcome)
	}
	return st, err
}

func (svc *Service) CloseEditor(ctx context.Context, id string) (State, error) {
	return svc.update(ctx, id, func(g *Grid) error {
		g.CloseEditor()
		return nil
	})
}

func (svc *Service) RequestDelete(ctx context.Context, id string) (State, error) {
	return svc.update(ctx, id, func(g *Grid) error { return g.RequestDelete() })
}

func (svc *Service) ConfirmDelete(ctx context.Context, id string) (State, error) {
	return svc.update(ctx, id, func(g *Grid) error { return g.ConfirmDelete() })
}

func (svc *Service) CancelDelete(ctx context.Context, id string) (State, error) {
	return svc.update(ctx, id, func(g *Grid) error {
		g.CancelDelete()
		return nil
	})
}

// Close destroys the view (navigation away).
func (svc *Service) Close(ctx context.Context, id string) error {
	return svc.repo.DeleteGrid(ctx, id)
}

func (svc *Service) Count(ctx context.Context) int {
	return svc.repo.CountGrids(ctx)
}

func (svc *Service) update(ctx context.Context, id string, fn func(g *Grid) error) (State, error) {
	g, err := svc.repo.UpdateGrid(ctx, id, fn)
	if err != nil {
		return State{}, err
	}
	return g.State(), nil
}
