package ports

import (
	"context"

	"github.com/seungjunone/peloton-data-explorer/internal/domain"
)

// FitnessAPI is the remote fitness-tracking API. Implementations own the
// transport-level session state (cookies); UseSession primes it from a
// previously stored session.
type FitnessAPI interface {
	Authenticate(ctx context.Context, creds domain.Credentials) (domain.Session, error)
	UseSession(session domain.Session) error
	FetchUserOverview(ctx context.Context, userID string) (domain.Document, error)
	FetchAllWorkouts(ctx context.Context, userID string) ([]domain.Document, error)
	FetchWorkoutDetail(ctx context.Context, workoutID string) (domain.Document, error)
}
