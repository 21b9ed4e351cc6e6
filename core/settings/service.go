package settings

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound = errors.New("settings not found")
)

type (
	// Repository is the Settings Store. Report views only ever read from it.
	Repository interface {
		GetSettings(ctx context.Context) (Settings, error)
		SaveSettings(ctx context.Context, s Settings) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the current Settings. A store that has never been written yields empty Settings.
func (svc *Service) Get(ctx context.Context) (Settings, error) {
	s, err := svc.repo.GetSettings(ctx)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Settings{}, nil
		}
		return Settings{}, errors.Wrap(err, "loading settings")
	}
	return s, nil
}

func (svc *Service) Update(ctx context.Context, us UpdateSettings) (Settings, error) {
	s, err := svc.Get(ctx)
	if err != nil {
		return Settings{}, err
	}
	s = us.apply(s)
	if err = svc.repo.SaveSettings(ctx, s); err != nil {
		return Settings{}, errors.Wrap(err, "saving settings")
	}
	return s, nil
}
