package rankingservice

import (
	"context"
	"fmt"

	rankingdomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/domain"
)

func (s *RankingService) GetStandings(ctx context.Context, seasonID int64, category rankingdomain.Category) ([]rankingdomain.Entry, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	rows, err := s.repo.ListStandings(ctx, nil, seasonID, category)
	if err != nil {
		return nil, err
	}
	entries := make([]rankingdomain.Entry, len(rows))
	for i := range rows {
		entries[i] = rows[i].Entry()
	}
	return entries, nil
}
