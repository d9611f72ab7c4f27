// Package docstore is the document-store sink's PostgreSQL layer: a
// post collection keyed by CID, a user collection keyed by DID, and
// the relational edges between them.
package docstore

// Schema bootstraps the tables the document-store sink writes to.
// Posts and users are upserted independently; edges are a thin join
// table so a post's author/reply/quote relationships can be queried
// without re-parsing the post body.
const Schema = `
-- users: one row per author DID. Rows are created empty (author
-- placeholder) the first time a post references that DID, then
-- overwritten once a background profile fetch completes.
CREATE TABLE IF NOT EXISTS users (
    did          VARCHAR(255) PRIMARY KEY,
    handle       VARCHAR(253),
    display_name TEXT,
    description  TEXT,
    avatar       TEXT,
    banner       TEXT,
    followers    BIGINT NOT NULL DEFAULT 0,
    follows      BIGINT NOT NULL DEFAULT 0,
    posts_count  BIGINT NOT NULL DEFAULT 0,
    indexed_at   TIMESTAMPTZ,
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- posts: one row per post CID. created_at is stored as a timestamptz;
-- the post's original UTC offset is not kept.
CREATE TABLE IF NOT EXISTS posts (
    cid         VARCHAR(255) PRIMARY KEY,
    author_did  VARCHAR(255) NOT NULL,
    text        TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL,
    langs       TEXT[] NOT NULL DEFAULT '{}',
    labels      TEXT[] NOT NULL DEFAULT '{}',
    tags        TEXT[] NOT NULL DEFAULT '{}',
    indexed_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_did);

-- edges: relational edges between posts and users. kind is one of
-- "author", "reply_parent", "reply_root", "quoted". subject_cid is
-- NULL for the "author" edge, whose subject is a user DID instead.
CREATE TABLE IF NOT EXISTS edges (
    post_cid    VARCHAR(255) NOT NULL,
    kind        VARCHAR(20) NOT NULL,
    subject_did VARCHAR(255),
    subject_cid VARCHAR(255),
    UNIQUE NULLS NOT DISTINCT (post_cid, kind, subject_did, subject_cid)
);

CREATE INDEX IF NOT EXISTS idx_edges_subject_cid ON edges(subject_cid) WHERE subject_cid IS NOT NULL;
`
