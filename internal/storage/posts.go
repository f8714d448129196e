package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"moltscope/internal/common"
	"moltscope/internal/model"
)

// SavePosts upserts a batch of posts. Re-ingesting a snapshot is
// idempotent: a post already present is overwritten with the newer
// content (last seen wins).
func (s *SQLiteStorage) SavePosts(ctx context.Context, posts []model.Post) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range posts {
		if err := validatePost(&posts[i]); err != nil {
			return fmt.Errorf("post %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO posts (id, author_id, parent_id, content, created_at, hash)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			author_id = excluded.author_id,
			parent_id = excluded.parent_id,
			content = excluded.content,
			created_at = excluded.created_at,
			hash = excluded.hash
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, post := range posts {
		var createdAt any
		if !post.CreatedAt.IsZero() {
			createdAt = post.CreatedAt.UTC()
		}
		if _, err := stmt.ExecContext(ctx,
			post.ID, post.AuthorID, post.ParentID, post.Content, createdAt, post.Hash); err != nil {
			return fmt.Errorf("failed to save post %s: %w", post.ID, err)
		}
	}

	return tx.Commit()
}

// GetPosts returns all ingested posts ordered by creation time, then ID.
func (s *SQLiteStorage) GetPosts(ctx context.Context) ([]model.Post, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author_id, COALESCE(parent_id, ''), content, created_at, hash
		FROM posts
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var posts []model.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

// GetPostByID returns a single post or common.ErrNotFound.
func (s *SQLiteStorage) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, author_id, COALESCE(parent_id, ''), content, created_at, hash
		FROM posts
		WHERE id = ?
	`, id)

	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// CountPosts returns the number of ingested posts.
func (s *SQLiteStorage) CountPosts(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (model.Post, error) {
	var post model.Post
	var createdAt sql.NullTime

	if err := row.Scan(&post.ID, &post.AuthorID, &post.ParentID, &post.Content, &createdAt, &post.Hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Post{}, err
		}
		return model.Post{}, fmt.Errorf("failed to scan post: %w", err)
	}
	if createdAt.Valid {
		post.CreatedAt = createdAt.Time.UTC()
	} else {
		post.CreatedAt = time.Time{}
	}
	return post, nil
}
