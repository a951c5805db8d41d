package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/forecast-report-service/internal/domain"
)

// MultiLoader fans a batch out to several loaders in order, stopping at the
// first failure. The batch is only committed once every loader accepted it.
type MultiLoader []BatchLoader

func (m MultiLoader) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	for i, l := range m {
		if err := l.LoadBatch(ctx, events); err != nil {
			return fmt.Errorf("loader %d: %w", i, err)
		}
	}
	return nil
}
