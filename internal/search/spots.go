package search

import (
	"context"

	"github.com/af-corp/atlas-planner/internal/types"
)

const defaultSpotLimit = 10

var baseSpots = []string{
	"City Museum",
	"Central Park",
	"Food Street",
	"Old Town Square",
	"Riverside Walk",
}

// SpotProvider returns a bounded list of points of interest for a
// destination, extended with one synthetic entry per preference tag.
type SpotProvider struct {
	limit int
}

func NewSpotProvider() *SpotProvider {
	return &SpotProvider{limit: defaultSpotLimit}
}

func (p *SpotProvider) Fetch(ctx context.Context, destination string, preferences []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if destination == "" {
		return nil, types.NewDomainError(types.CodeSpotFetchFail, "Destination missing")
	}
	spots := make([]string, 0, len(baseSpots)+len(preferences))
	spots = append(spots, baseSpots...)
	for _, pref := range preferences {
		spots = append(spots, pref+" picks")
	}
	if len(spots) > p.limit {
		spots = spots[:p.limit]
	}
	return spots, nil
}
