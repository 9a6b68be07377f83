package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/storage"
	"golang.org/x/sync/errgroup"
)

// Publisher receives a fresh snapshot after every successful write.
type Publisher interface {
	Publish(ctx context.Context, snapshot *models.RoundSnapshot) error
}

type snapshotPublisher struct {
	hub      *brackets.Hub
	uploader storage.FileUploader
	logger   *slog.Logger
}

// NewSnapshotPublisher broadcasts snapshots to websocket watchers and archives
// them as JSON. Either target may be nil.
func NewSnapshotPublisher(hub *brackets.Hub, uploader storage.FileUploader, logger *slog.Logger) Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &snapshotPublisher{hub: hub, uploader: uploader, logger: logger}
}

func (p *snapshotPublisher) Publish(ctx context.Context, snapshot *models.RoundSnapshot) error {
	if snapshot == nil {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)

	if p.hub != nil {
		g.Go(func() error {
			if err := p.hub.Publish(gctx, brackets.MessageStandingsUpdated, snapshot); err != nil {
				return fmt.Errorf("broadcast snapshot %s: %w", snapshot.ID, err)
			}
			return nil
		})
	}

	if p.uploader != nil {
		g.Go(func() error {
			body, err := json.Marshal(snapshot)
			if err != nil {
				return fmt.Errorf("encode snapshot %s: %w", snapshot.ID, err)
			}
			result, err := p.uploader.Upload(gctx, SnapshotKey(snapshot), "application/json", bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("archive snapshot %s: %w", snapshot.ID, err)
			}
			p.logger.InfoContext(gctx, "snapshot archived",
				slog.String("snapshot_id", snapshot.ID),
				slog.String("key", result.Key),
				slog.String("location", result.Location))
			return nil
		})
	}

	return g.Wait()
}

// SnapshotKey returns the object key a snapshot is archived under. Keys sort
// chronologically.
func SnapshotKey(snapshot *models.RoundSnapshot) string {
	return fmt.Sprintf("snapshots/%s_%s.json", snapshot.GeneratedAt.UTC().Format("20060102T150405.000000000Z"), snapshot.ID)
}
