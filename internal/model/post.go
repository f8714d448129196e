package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Post represents a single item from a Moltbook snapshot, either a
// top-level post or a comment. Posts are immutable once ingested.
type Post struct {
	CreatedAt time.Time
	ID        string
	AuthorID  string
	ParentID  string // Empty for top-level posts
	Content   string
	Hash      string
}

// IsComment reports whether the post is a reply to another post.
func (p *Post) IsComment() bool {
	return p.ParentID != ""
}

// GenerateHash creates a content hash used to detect changed posts
// between snapshot re-fetches.
func (p *Post) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s",
		p.ID,
		p.AuthorID,
		p.CreatedAt.UTC().Format(time.RFC3339),
		p.Content)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
