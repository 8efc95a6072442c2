// Package sweep implements the startup scan that surfaces past dates whose
// items were never marked purchased.
package sweep

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mthomps/restock/internal/model"
	"github.com/mthomps/restock/internal/store"
)

// Checker scans past dates for unpurchased items and raises at most one
// notification per date, ever.
type Checker struct {
	items   *store.ItemStore
	markers *store.SweepStore
	queue   *store.NotificationStore
	logger  *slog.Logger
}

func NewChecker(items *store.ItemStore, markers *store.SweepStore, queue *store.NotificationStore, logger *slog.Logger) *Checker {
	return &Checker{
		items:   items,
		markers: markers,
		queue:   queue,
		logger:  logger,
	}
}

// Run performs one sweep as of the given time. Dates already reminded about
// are skipped permanently, even if items were added to them since.
func (c *Checker) Run(ctx context.Context, now time.Time) error {
	today := now.Format("2006-01-02")

	dates, err := c.items.ListDatesBefore(today)
	if err != nil {
		return fmt.Errorf("list past dates: %w", err)
	}

	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.sweepDate(date, now); err != nil {
			// One bad date must not starve the rest of the scan.
			c.logger.Error("sweep date failed", "date", date, "error", err)
		}
	}
	return nil
}

func (c *Checker) sweepDate(date string, now time.Time) error {
	unpurchased, err := c.items.ListUnpurchasedByDate(date)
	if err != nil {
		return err
	}
	if len(unpurchased) == 0 {
		return nil
	}

	reminded, err := c.markers.WasReminded(date)
	if err != nil {
		return err
	}
	if reminded {
		return nil
	}

	ids := make([]string, 0, len(unpurchased))
	for _, item := range unpurchased {
		ids = append(ids, item.ID)
	}

	payload, err := json.Marshal(model.UnpurchasedPayload{
		Type:  model.NotifKindUnpurchased,
		Date:  date,
		Items: ids,
	})
	if err != nil {
		return fmt.Errorf("marshal sweep payload: %w", err)
	}

	if _, err := c.queue.Enqueue(model.NotifKindUnpurchased, "", payload, now); err != nil {
		return err
	}

	if _, err := c.markers.MarkReminded(date); err != nil {
		return err
	}

	c.logger.Info("unpurchased items reminder raised", "date", date, "count", len(ids))
	return nil
}
