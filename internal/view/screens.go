package view

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/couchcryptid/ferry-services/internal/directory"
)

// ErrUnknownService is returned for a service id missing from the directory.
var ErrUnknownService = errors.New("unknown service")

// Screens holds one ServiceDetail per service, created on first use, and the
// timetable screen.
type Screens struct {
	ctx       context.Context
	dir       *directory.Directory
	deps      Dependencies
	timetable *Timetable

	mu       sync.Mutex
	services map[int]*ServiceDetail
}

// NewScreens creates the registry. Screens it creates live until ctx is cancelled.
func NewScreens(ctx context.Context, dir *directory.Directory, deps Dependencies, timetable *Timetable) *Screens {
	return &Screens{
		ctx:       ctx,
		dir:       dir,
		deps:      deps,
		timetable: timetable,
		services:  make(map[int]*ServiceDetail),
	}
}

// Service returns the screen for id. A newly created screen is registered
// first and then starts its first refresh. That refresh belongs to the
// screen, so it does not depend on the caller's context.
func (s *Screens) Service(_ context.Context, id int) (*ServiceDetail, error) {
	sd, created, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if created {
		if _, err := sd.Refresh(s.ctx); err != nil {
			return nil, fmt.Errorf("refresh service %d: %w", id, err)
		}
	}
	return sd, nil
}

func (s *Screens) lookup(id int) (*ServiceDetail, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sd, ok := s.services[id]; ok {
		return sd, false, nil
	}
	svc, ok := s.dir.Service(id)
	if !ok {
		return nil, false, fmt.Errorf("%w: %d", ErrUnknownService, id)
	}
	sd := NewServiceDetail(s.ctx, svc, s.deps)
	s.services[id] = sd
	return sd, true, nil
}

// Timetable returns the timetable screen.
func (s *Screens) Timetable() *Timetable {
	return s.timetable
}

// CheckReadiness reports an error once the screens' context has ended.
func (s *Screens) CheckReadiness(context.Context) error {
	if err := s.ctx.Err(); err != nil {
		return fmt.Errorf("screens stopped: %w", err)
	}
	return nil
}
