package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coldline-crm/coldline/internal/models"
	"github.com/coldline-crm/coldline/pkg/cache"
	"go.uber.org/zap"
)

const (
	snapshotKeyClients   = "snapshot:clients"
	snapshotKeyCampaigns = "snapshot:campaigns"
	snapshotTTL          = 10 * time.Minute
)

// Snapshot 记录集合的缓存快照
type Snapshot struct {
	Clients   []models.Client   `json:"clients"`
	Campaigns []models.Campaign `json:"campaigns"`
	TakenAt   time.Time         `json:"takenAt"`
}

// SnapshotStore caches a point-in-time view of the client and campaign
// collections. It is injected into consumers rather than held as a
// package global so tests can build isolated instances.
type SnapshotStore struct {
	store  *Store
	cache  cache.Cache
	logger *zap.Logger
}

// NewSnapshotStore 创建快照存储
func NewSnapshotStore(store *Store, c cache.Cache, logger *zap.Logger) *SnapshotStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotStore{store: store, cache: c, logger: logger}
}

// Refresh reads the collections from the database and replaces the cached
// snapshot.
func (s *SnapshotStore) Refresh(ctx context.Context) (*Snapshot, error) {
	clients, err := s.store.ListClients(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	campaigns, err := s.store.ListCampaigns(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Clients: clients, Campaigns: campaigns, TakenAt: time.Now()}

	if data, err := json.Marshal(snap.Clients); err == nil {
		if err := s.cache.Set(ctx, snapshotKeyClients, data, snapshotTTL); err != nil {
			s.logger.Warn("cache client snapshot failed", zap.Error(err))
		}
	}
	if data, err := json.Marshal(snap.Campaigns); err == nil {
		if err := s.cache.Set(ctx, snapshotKeyCampaigns, data, snapshotTTL); err != nil {
			s.logger.Warn("cache campaign snapshot failed", zap.Error(err))
		}
	}
	return snap, nil
}

// Load returns the cached snapshot, refreshing from the database when the
// cache has no entry.
func (s *SnapshotStore) Load(ctx context.Context) (*Snapshot, error) {
	clientData, ok1, err1 := s.cache.Get(ctx, snapshotKeyClients)
	campaignData, ok2, err2 := s.cache.Get(ctx, snapshotKeyCampaigns)
	if err1 != nil || err2 != nil || !ok1 || !ok2 {
		return s.Refresh(ctx)
	}

	snap := &Snapshot{TakenAt: time.Now()}
	if err := json.Unmarshal(clientData, &snap.Clients); err != nil {
		return s.Refresh(ctx)
	}
	if err := json.Unmarshal(campaignData, &snap.Campaigns); err != nil {
		return s.Refresh(ctx)
	}
	return snap, nil
}
