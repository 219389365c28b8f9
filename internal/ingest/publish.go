package ingest

import (
	"context"
	"errors"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

// Fanout publishes each event to every publisher, joining their errors.
type Fanout []Publisher

// Publish implements Publisher.
func (f Fanout) Publish(ctx context.Context, ev model.IngestionEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
