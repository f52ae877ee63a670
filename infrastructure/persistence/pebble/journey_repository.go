package pebble

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"journeymap/application/ports"
	"journeymap/domain/config"
	"journeymap/domain/core/aggregates"
	pkgerrors "journeymap/pkg/errors"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"
)

// Key layout:
//
//	journey:<id>          JSON snapshot
//	owner:<owner>\x00<id> empty, secondary index for ListByOwner
//
// Owner ids may contain ':', so the owner part ends with a NUL byte.
const (
	journeyPrefix = "journey:"
	ownerPrefix   = "owner:"
)

// JourneyRepository stores journeys in an embedded Pebble database
type JourneyRepository struct {
	db     *pebble.DB
	cfg    *config.DomainConfig
	logger *zap.Logger
}

// Open opens (or creates) the database at path
func Open(path string, cfg *config.DomainConfig, logger *zap.Logger) (*JourneyRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble store: %w", err)
	}
	return &JourneyRepository{db: db, cfg: cfg, logger: logger}, nil
}

var _ ports.JourneyRepository = (*JourneyRepository)(nil)

// Close closes the database
func (r *JourneyRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func journeyKey(id string) []byte {
	return []byte(journeyPrefix + id)
}

func ownerScanPrefix(ownerID string) []byte {
	return []byte(ownerPrefix + ownerID + "\x00")
}

func ownerKey(ownerID, id string) []byte {
	return append(ownerScanPrefix(ownerID), id...)
}

// Save writes the snapshot and its owner index entry in one batch
func (r *JourneyRepository) Save(ctx context.Context, journey *aggregates.Journey) error {
	if journey == nil {
		return fmt.Errorf("journey is required")
	}
	snap := journey.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal journey: %w", err)
	}

	batch := r.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(journeyKey(snap.ID), data, nil); err != nil {
		return err
	}
	if err := batch.Set(ownerKey(snap.OwnerID, snap.ID), nil, nil); err != nil {
		return err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		r.logger.Error("Failed to save journey", zap.String("journeyID", snap.ID), zap.Error(err))
		return fmt.Errorf("failed to save journey: %w", err)
	}
	return nil
}

// GetByID loads a journey
func (r *JourneyRepository) GetByID(ctx context.Context, id string) (*aggregates.Journey, error) {
	snap, err := r.load(id)
	if err != nil {
		return nil, err
	}
	return aggregates.FromSnapshot(snap, r.cfg)
}

func (r *JourneyRepository) load(id string) (aggregates.Snapshot, error) {
	var snap aggregates.Snapshot
	value, closer, err := r.db.Get(journeyKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return snap, fmt.Errorf("%w: %s", pkgerrors.ErrJourneyNotFound, id)
	}
	if err != nil {
		return snap, fmt.Errorf("failed to read journey: %w", err)
	}
	defer closer.Close()

	// value is only valid until closer is closed; Unmarshal copies
	if err := json.Unmarshal(value, &snap); err != nil {
		return snap, fmt.Errorf("failed to unmarshal journey %s: %w", id, err)
	}
	return snap, nil
}

// ListByOwner walks the owner index and returns one page, newest first
func (r *JourneyRepository) ListByOwner(ctx context.Context, ownerID string, opts ports.ListOptions) ([]*aggregates.Journey, int, error) {
	prefix := ownerScanPrefix(ownerID)
	it, err := r.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})
	if err != nil {
		return nil, 0, err
	}
	defer it.Close()

	var ids []string
	for ok := it.First(); ok; ok = it.Next() {
		ids = append(ids, string(it.Key()[len(prefix):]))
	}
	if err := it.Error(); err != nil {
		return nil, 0, err
	}

	journeys := make([]*aggregates.Journey, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		j, err := r.GetByID(ctx, id)
		if err != nil {
			if pkgerrors.IsDomainCode(err, pkgerrors.ErrJourneyNotFound.Code) {
				r.logger.Warn("Dangling owner index entry", zap.String("journeyID", id))
				continue
			}
			return nil, 0, err
		}
		if j.OwnerID() != ownerID {
			r.logger.Warn("Owner index entry points at another owner's journey",
				zap.String("journeyID", id),
				zap.String("ownerID", ownerID),
			)
			continue
		}
		journeys = append(journeys, j)
	}

	aggregates.SortedByUpdate(journeys)
	return ports.Page(journeys, opts), len(journeys), nil
}

// Delete removes a journey and its index entry
func (r *JourneyRepository) Delete(ctx context.Context, id string) error {
	snap, err := r.load(id)
	if err != nil {
		return err
	}

	batch := r.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(journeyKey(id), nil); err != nil {
		return err
	}
	if err := batch.Delete(ownerKey(snap.OwnerID, id), nil); err != nil {
		return err
	}
	return batch.Commit(pebble.Sync)
}

// prefixEnd returns the smallest key greater than every key with prefix
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
