package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/yungbote/learnsphere-backend/internal/data/repos"
	"github.com/yungbote/learnsphere-backend/internal/pkg/dbctx"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
	"github.com/yungbote/learnsphere-backend/internal/platform/storage"
)

// TokenPurge deletes session rows whose refresh token has expired.
type TokenPurge struct {
	log    *logger.Logger
	tokens repos.UserTokenRepo
	now    func() time.Time
}

func NewTokenPurge(log *logger.Logger, tokens repos.UserTokenRepo) *TokenPurge {
	return &TokenPurge{log: log.With("job", "token_purge"), tokens: tokens, now: time.Now}
}

func (j *TokenPurge) Name() string     { return "token_purge" }
func (j *TokenPurge) Schedule() string { return "@every 1h" }

func (j *TokenPurge) Run(ctx context.Context) error {
	n, err := j.tokens.DeleteExpiredBefore(dbctx.Context{Ctx: ctx}, j.now())
	if err != nil {
		return fmt.Errorf("purge expired tokens: %w", err)
	}
	if n > 0 {
		j.log.Info("Purged expired tokens", "count", n)
	}
	return nil
}

// OrphanSweep removes locally stored uploads with no document row. A key is
// only deleted once it has been orphaned on two consecutive runs, so uploads
// whose row is still being written are left alone.
type OrphanSweep struct {
	log   *logger.Logger
	store storage.Store
	docs  repos.DocumentRepo

	mu      sync.Mutex
	pending mapset.Set[string]
}

func NewOrphanSweep(log *logger.Logger, store storage.Store, docs repos.DocumentRepo) *OrphanSweep {
	return &OrphanSweep{
		log:     log.With("job", "orphan_sweep"),
		store:   store,
		docs:    docs,
		pending: mapset.NewThreadUnsafeSet[string](),
	}
}

func (j *OrphanSweep) Name() string     { return "orphan_sweep" }
func (j *OrphanSweep) Schedule() string { return "@every 6h" }

func (j *OrphanSweep) Run(ctx context.Context) error {
	if j.store.Mode() != storage.ModeLocal {
		return nil
	}
	keys, err := j.store.List(ctx, "documents/")
	if err != nil {
		return fmt.Errorf("list stored documents: %w", err)
	}
	existing, err := j.docs.ExistingStorageKeys(dbctx.Context{Ctx: ctx}, keys)
	if err != nil {
		return fmt.Errorf("lookup storage keys: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	orphans := mapset.NewThreadUnsafeSet[string]()
	for _, key := range keys {
		if !existing[key] {
			orphans.Add(key)
		}
	}

	var errs []error
	deleted := 0
	for key := range orphans.Intersect(j.pending).Iter() {
		if err := j.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
			continue
		}
		orphans.Remove(key)
		deleted++
	}
	j.pending = orphans
	if deleted > 0 || orphans.Cardinality() > 0 {
		j.log.Info("Orphan sweep finished", "deleted", deleted, "pending", orphans.Cardinality())
	}
	return errors.Join(errs...)
}
