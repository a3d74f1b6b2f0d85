package borealair

import (
	"context"
	"fmt"
	"time"

	"github.com/delivro/freightbridge/internal/cache"
)

const interlineCacheTTL = 5 * time.Hour

// interlineResolver decides whether a lane needs third-party interline
// routing and resolves the interline group id through a TTL cache.
type interlineResolver struct {
	ref   ReferenceData
	cache *cache.Cache[string]
}

func newInterlineResolver(ref ReferenceData) *interlineResolver {
	return &interlineResolver{
		ref:   ref,
		cache: cache.New[string](),
	}
}

// IsInterlineLane reports whether the directed (origin, destination) pair is
// served through a partner carrier. Ordering matters; the check is not
// bidirectional.
func (r *interlineResolver) IsInterlineLane(ctx context.Context, origin, destination string) (bool, error) {
	_, ok, err := r.ref.InterlineLane(ctx, origin, destination)
	if err != nil {
		return false, fmt.Errorf("interline lane check: %w", err)
	}
	return ok, nil
}

// ResolveID resolves the interline group id for a lane. Hits are cached;
// misses are not, so a newly added lane becomes visible without waiting for
// expiry.
func (r *interlineResolver) ResolveID(ctx context.Context, origin, destination string) (string, bool, error) {
	key := fmt.Sprintf("interline-%s-%s", origin, destination)
	if id, ok := r.cache.Get(key); ok {
		return id, true, nil
	}

	lane, ok, err := r.ref.InterlineLane(ctx, origin, destination)
	if err != nil {
		return "", false, fmt.Errorf("interline id lookup: %w", err)
	}
	if !ok {
		return "", false, nil
	}

	r.cache.Set(key, lane.GroupID, interlineCacheTTL)
	return lane.GroupID, true, nil
}
