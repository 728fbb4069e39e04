package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/danbi-analytics/channel-collector-go/internal/kv"
	"github.com/danbi-analytics/channel-collector-go/internal/store"
	"github.com/danbi-analytics/channel-collector-go/pkg/logger"
)

// Syncer mirrors finished channel documents from the document store into
// the read-side KV table. The mirror is one-way; the store stays the source
// of truth.
type Syncer struct {
	store store.DocumentStore
	repo  kv.Repository

	// Delay between document copies so a full sync never hammers either
	// side.
	delay time.Duration
}

// NewSyncer creates a syncer from the document store into the KV table.
func NewSyncer(docStore store.DocumentStore, repo kv.Repository, delay time.Duration) *Syncer {
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	return &Syncer{store: docStore, repo: repo, delay: delay}
}

// SyncResult summarizes one sync run.
type SyncResult struct {
	Synced int
	Failed int
}

// SyncAll copies every channel listed in the index, plus the index itself,
// into the KV table. Per-document failures are logged and counted; the run
// continues so one bad document never blocks the rest.
func (s *Syncer) SyncAll(ctx context.Context) (*SyncResult, error) {
	index, err := store.ReadIndex(ctx, s.store)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("kv sync started", zap.Int("channels", index.TotalChannels))

	result := &SyncResult{}
	for _, entry := range index.Channels {
		if err := s.syncOne(ctx, store.DocumentName(entry.ChannelID)); err != nil {
			result.Failed++
			logger.Log.Warn("kv sync failed for channel",
				zap.String("channelId", entry.ChannelID), zap.Error(err))
		} else {
			result.Synced++
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(s.delay):
		}
	}

	// The index mirrors last so readers never see it pointing at documents
	// that have not arrived yet.
	if err := s.syncOne(ctx, store.IndexName); err != nil {
		result.Failed++
		logger.Log.Warn("kv sync failed for index", zap.Error(err))
	} else {
		result.Synced++
	}

	logger.Log.Info("kv sync finished",
		zap.Int("synced", result.Synced),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *Syncer) syncOne(ctx context.Context, name string) error {
	ref, err := s.store.Find(ctx, name)
	if err != nil {
		return err
	}
	content, err := s.store.Read(ctx, ref)
	if err != nil {
		return err
	}
	return s.repo.Put(ctx, name, content)
}
