package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/primal-host/firehose-consumer/internal/profilecache"
	"github.com/primal-host/firehose-consumer/internal/record"
)

// Store wraps a pgx connection pool bootstrapped with Schema.
type Store struct {
	Pool *pgxpool.Pool
}

// Connect opens the pool, verifies connectivity, and bootstraps the
// schema. Pool sizing mirrors the values the source PDS used for its
// tenant databases.
func Connect(ctx context.Context, connString string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("docstore: parse config: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("docstore: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("docstore: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, Schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("docstore: bootstrap schema: %w", err)
	}

	return &Store{Pool: pool}, nil
}

// Close shuts down the connection pool.
func (s *Store) Close() error {
	s.Pool.Close()
	return nil
}

// UpsertPlaceholderUser inserts an empty user row for did if one does
// not already exist, so edge endpoints always resolve even before a
// profile fetch completes.
func (s *Store) UpsertPlaceholderUser(ctx context.Context, did string) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO users (did) VALUES ($1) ON CONFLICT (did) DO NOTHING`, did)
	if err != nil {
		return fmt.Errorf("docstore: upsert placeholder user %s: %w", did, err)
	}
	return nil
}

// UpsertUser overwrites a user row with a fully fetched profile.
func (s *Store) UpsertUser(ctx context.Context, u profilecache.User) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO users (did, handle, display_name, description, avatar, banner, followers, follows, posts_count, indexed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (did) DO UPDATE SET
			handle = EXCLUDED.handle,
			display_name = EXCLUDED.display_name,
			description = EXCLUDED.description,
			avatar = EXCLUDED.avatar,
			banner = EXCLUDED.banner,
			followers = EXCLUDED.followers,
			follows = EXCLUDED.follows,
			posts_count = EXCLUDED.posts_count,
			indexed_at = EXCLUDED.indexed_at,
			updated_at = NOW()`,
		u.DID, u.Handle, u.DisplayName, u.Description, u.Avatar, u.Banner,
		u.FollowersCount, u.FollowsCount, u.PostsCount, nullableTime(u.IndexedAt))
	if err != nil {
		return fmt.Errorf("docstore: upsert user %s: %w", u.DID, err)
	}
	return nil
}

// UpsertPostWithEdges upserts post and, in the same transaction,
// writes its author/reply/quote edges. Edge creation uses ON CONFLICT
// DO NOTHING: edges are append-only facts, not a mutable view that
// needs reconciling on post update.
func (s *Store) UpsertPostWithEdges(ctx context.Context, post *record.Post) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("docstore: begin tx for post %s: %w", post.CID, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO posts (cid, author_did, text, created_at, langs, labels, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (cid) DO NOTHING`,
		post.CID.String(), post.Author, post.Text, post.CreatedAt,
		post.Langs, post.Labels, post.Tags,
	); err != nil {
		return fmt.Errorf("docstore: upsert post %s: %w", post.CID, err)
	}

	if err := insertEdge(ctx, tx, post.CID.String(), "author", post.Author, ""); err != nil {
		return err
	}

	if post.Reply != nil {
		if err := insertEdge(ctx, tx, post.CID.String(), "reply_parent", "", post.Reply.Parent.String()); err != nil {
			return err
		}
		if err := insertEdge(ctx, tx, post.CID.String(), "reply_root", "", post.Reply.Root.String()); err != nil {
			return err
		}
	}

	if post.Embed != nil && post.Embed.Record != nil {
		switch post.Embed.Kind {
		case record.EmbedRecord, record.EmbedRecordWithMedia:
			if err := insertEdge(ctx, tx, post.CID.String(), "quoted", "", post.Embed.Record.String()); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("docstore: commit post %s: %w", post.CID, err)
	}
	return nil
}

func insertEdge(ctx context.Context, tx pgx.Tx, postCID, kind, subjectDID, subjectCID string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO edges (post_cid, kind, subject_did, subject_cid)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
		ON CONFLICT DO NOTHING`,
		postCID, kind, subjectDID, subjectCID)
	if err != nil {
		return fmt.Errorf("docstore: insert %s edge for %s: %w", kind, postCID, err)
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
