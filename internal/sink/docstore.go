package sink

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/primal-host/firehose-consumer/internal/docstore"
	"github.com/primal-host/firehose-consumer/internal/firehose"
	"github.com/primal-host/firehose-consumer/internal/profilecache"
	"github.com/primal-host/firehose-consumer/internal/record"
)

// maxOutstandingWrites bounds the detached document-store tasks in
// flight; once reached, Export blocks on task admission. This is the
// only backpressure coupling between the ingest loop and the sink.
const maxOutstandingWrites = 16

// DocStore upserts posts (with their relational edges) and user
// placeholders into Postgres. Each export runs in a detached
// goroutine so slow I/O never blocks the caller directly; admission
// into that pool is what actually applies backpressure.
type DocStore struct {
	store           *docstore.Store
	cache           *profilecache.Cache
	fetchUserData   bool
	log             *slog.Logger
	sem             chan struct{}
}

// NewDocStore builds a DocStore. cache may be nil when fetchUserData
// is false.
func NewDocStore(store *docstore.Store, cache *profilecache.Cache, fetchUserData bool, log *slog.Logger) *DocStore {
	if log == nil {
		log = slog.Default()
	}
	return &DocStore{
		store:         store,
		cache:         cache,
		fetchUserData: fetchUserData,
		log:           log.With(slog.String("component", "sink.docstore")),
		sem:           make(chan struct{}, maxOutstandingWrites),
	}
}

func (d *DocStore) Export(ctx context.Context, rec record.Record) error {
	if rec.Kind != firehose.OperationPost || rec.Post == nil {
		return nil
	}

	select {
	case d.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	go d.writePost(uuid.NewString(), rec.Post)
	return nil
}

// writePost runs detached from the caller: the semaphore slot it holds
// is released when the placeholder and post writes finish, not when
// Export returns. The profile fetch it may trigger runs in a separate
// goroutine outside the bounded pool. taskID correlates this task's log
// lines across the placeholder upsert, the post write, and the
// follow-on profile fetch.
func (d *DocStore) writePost(taskID string, post *record.Post) {
	defer func() { <-d.sem }()

	log := d.log.With(slog.String("task_id", taskID))
	ctx := context.Background()

	if err := d.store.UpsertPlaceholderUser(ctx, post.Author); err != nil {
		log.Warn("placeholder user upsert failed", "did", post.Author, "err", err)
	}

	if err := d.store.UpsertPostWithEdges(ctx, post); err != nil {
		log.Warn("post upsert failed", "cid", post.CID.String(), "err", err)
		return
	}

	if d.fetchUserData && d.cache != nil {
		go d.fetchAndUpsertUser(log, post.Author)
	}
}

func (d *DocStore) fetchAndUpsertUser(log *slog.Logger, did string) {
	user, err := d.cache.Get(context.Background(), did)
	if err != nil {
		log.Warn("profile fetch failed", "did", did, "err", err)
		return
	}
	if err := d.store.UpsertUser(context.Background(), user); err != nil {
		log.Warn("user upsert failed", "did", did, "err", err)
	}
}

func (d *DocStore) Close() error {
	return d.store.Close()
}
