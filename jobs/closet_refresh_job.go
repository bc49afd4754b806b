package jobs

import (
	"context"
	"time"

	"github.com/fenilmodi00/closet-backend/models"
	"github.com/fenilmodi00/closet-backend/shared"
	"github.com/sirupsen/logrus"
)

const defaultRefreshBatchSize = 50

// ClosetRefresher is the part of the closet store the refresh job needs
type ClosetRefresher interface {
	ListNeedingRefresh(ctx context.Context, limit int) ([]models.ClosetItem, error)
	Refresh(ctx context.Context, item *models.ClosetItem) (bool, error)
}

// RefreshSummary reports the outcome of one run. Transient counts the failures
// that are expected to succeed on a later run.
type RefreshSummary struct {
	Checked   int
	Updated   int
	Failed    int
	Transient int
}

// ClosetRefreshJob re-extracts closet items whose metadata is incomplete
type ClosetRefreshJob struct {
	Store     ClosetRefresher
	Interval  time.Duration
	BatchSize int
	Timeout   time.Duration
}

func NewClosetRefreshJob(store ClosetRefresher, interval time.Duration) *ClosetRefreshJob {
	return &ClosetRefreshJob{
		Store:     store,
		Interval:  interval,
		BatchSize: defaultRefreshBatchSize,
		Timeout:   10 * time.Minute,
	}
}

// Start runs the job immediately and then on every interval until ctx is done
func (j *ClosetRefreshJob) Start(ctx context.Context) {
	logrus.WithField("interval", j.Interval).Info("Starting Closet Refresh Job")
	ticker := time.NewTicker(j.Interval)

	go func() {
		defer ticker.Stop()
		j.Run(ctx)

		for {
			select {
			case <-ctx.Done():
				logrus.Info("Closet Refresh Job stopped")
				return
			case <-ticker.C:
				j.Run(ctx)
			}
		}
	}()
}

// Run refreshes one batch. Items are extracted one at a time and a failure only skips that item.
func (j *ClosetRefreshJob) Run(parent context.Context) RefreshSummary {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(parent, j.Timeout)
	defer cancel()

	var summary RefreshSummary
	items, err := j.Store.ListNeedingRefresh(ctx, j.BatchSize)
	if err != nil {
		logrus.WithError(err).Error("Closet Refresh Job failed: error listing items")
		return summary
	}

	for i := range items {
		if ctx.Err() != nil {
			logrus.WithError(ctx.Err()).Warn("Closet Refresh Job interrupted")
			break
		}

		item := &items[i]
		summary.Checked++

		updated, err := j.Store.Refresh(ctx, item)
		if err != nil {
			summary.Failed++
			retryable := shared.IsRetryableError(err)
			if retryable {
				summary.Transient++
			}
			logrus.WithFields(logrus.Fields{
				"id":         item.ID,
				"brand":      item.Brand,
				"product_id": item.ProductID,
				"retryable":  retryable,
			}).WithError(err).Warn("Closet item refresh failed")
			continue
		}
		if updated {
			summary.Updated++
		}
	}

	logrus.WithFields(logrus.Fields{
		"checked":   summary.Checked,
		"updated":   summary.Updated,
		"failed":    summary.Failed,
		"transient": summary.Transient,
		"duration":  time.Since(startTime),
	}).Info("Closet Refresh Job completed")

	return summary
}
