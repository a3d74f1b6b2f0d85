package borealair

import (
	"context"
	"fmt"
	"time"

	"github.com/delivro/freightbridge/internal/cache"
	"github.com/delivro/freightbridge/pkg/shipper"
)

const transitCacheTTL = 5 * time.Hour

// transitResolver looks up lane transit times. Lanes are symmetric: both the
// cache probe and the table lookup try the reversed direction before giving
// up.
type transitResolver struct {
	ref   ReferenceData
	cache *cache.Cache[int]
}

func newTransitResolver(ref ReferenceData) *transitResolver {
	return &transitResolver{
		ref:   ref,
		cache: cache.New[int](),
	}
}

// Days returns the transit days for a lane and service, or
// shipper.TransitUnknown when neither direction has data. Known values are
// cached under the forward key only; unknown results are never cached.
func (r *transitResolver) Days(ctx context.Context, origin, destination, serviceID string) (int, error) {
	forward := fmt.Sprintf("%s-%s%s", origin, destination, serviceID)
	reverse := fmt.Sprintf("%s-%s%s", destination, origin, serviceID)

	if days, ok := r.cache.Get(forward); ok {
		return days, nil
	}
	if days, ok := r.cache.Get(reverse); ok {
		return days, nil
	}

	days, ok, err := r.ref.TransitLane(ctx, origin, destination, serviceID)
	if err != nil {
		return shipper.TransitUnknown, fmt.Errorf("transit lookup: %w", err)
	}
	if !ok {
		days, ok, err = r.ref.TransitLane(ctx, destination, origin, serviceID)
		if err != nil {
			return shipper.TransitUnknown, fmt.Errorf("transit lookup: %w", err)
		}
		if !ok {
			return shipper.TransitUnknown, nil
		}
	}

	if days != shipper.TransitUnknown {
		r.cache.Set(forward, days, transitCacheTTL)
	}
	return days, nil
}
