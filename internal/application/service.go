package application

import (
	"context"
	"fmt"

	"github.com/seungjunone/peloton-data-explorer/internal/domain"
	"github.com/seungjunone/peloton-data-explorer/internal/ports"
)

// Service orchestrates the fetch-and-flatten flows: authenticate, persist the
// session, pull documents through the API port, normalize, export. All calls
// are sequential and blocking; failures are terminal for the call that raised
// them (no retry anywhere).
type Service struct {
	api      ports.FitnessAPI
	sessions ports.SessionStore
	clock    ports.Clock
}

func NewService(api ports.FitnessAPI, sessions ports.SessionStore, clock ports.Clock) *Service {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Service{
		api:      api,
		sessions: sessions,
		clock:    clock,
	}
}

// Login authenticates with already-resolved credentials and persists the
// returned session. Incomplete credentials fail before any network call.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	if !creds.Complete() {
		return domain.Session{}, domain.ErrMissingCredentials
	}

	session, err := s.api.Authenticate(ctx, creds)
	if err != nil {
		return domain.Session{}, fmt.Errorf("authenticate: %w", err)
	}
	session.CreatedAt = s.clock.Now()

	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}

	return session, nil
}

func (s *Service) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Overview fetches the raw user overview document for the stored session.
func (s *Service) Overview(ctx context.Context) (domain.Document, error) {
	session, err := s.requireSession(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := s.api.FetchUserOverview(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("fetch user overview: %w", err)
	}

	return doc, nil
}

// CleanedOverview fetches the overview and normalizes it into the four
// extracts. A missing key anywhere in the document yields empty extracts and
// a *domain.MissingKeyError; callers decide how loudly to report it.
func (s *Service) CleanedOverview(ctx context.Context) (domain.Extracts, error) {
	doc, err := s.Overview(ctx)
	if err != nil {
		return domain.Extracts{}, err
	}

	return domain.CleanUserOverview(doc)
}

// Workouts fetches the full workout history, page by page.
func (s *Service) Workouts(ctx context.Context) ([]domain.Document, error) {
	session, err := s.requireSession(ctx)
	if err != nil {
		return nil, err
	}

	workouts, err := s.api.FetchAllWorkouts(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("fetch workouts: %w", err)
	}

	return workouts, nil
}

func (s *Service) WorkoutDetail(ctx context.Context, workoutID string) (domain.Document, error) {
	if _, err := s.requireSession(ctx); err != nil {
		return nil, err
	}

	doc, err := s.api.FetchWorkoutDetail(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("fetch workout detail: %w", err)
	}

	return doc, nil
}

func (s *Service) requireSession(ctx context.Context) (domain.Session, error) {
	session, err := s.sessions.Load(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session (run 'pde login' first): %w", err)
	}

	if err := s.api.UseSession(session); err != nil {
		return domain.Session{}, fmt.Errorf("resume session: %w", err)
	}

	return session, nil
}
