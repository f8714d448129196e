// Package loader reads Moltbook snapshot files into post records.
package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"moltscope/internal/common"
	"moltscope/internal/model"
)

// snapshotEntry is one element of a snapshot file. The collector exports
// entries wrapped in a "post" envelope; bare post objects are accepted too.
type snapshotEntry struct {
	Post *snapshotPost `json:"post"`

	// Bare shape fields, ignored when the envelope is present.
	ID        string          `json:"id"`
	AuthorID  string          `json:"author_id"`
	Author    string          `json:"author"`
	ParentID  string          `json:"parent_id"`
	Content   string          `json:"content"`
	CreatedAt json.RawMessage `json:"created_at"`
}

type snapshotPost struct {
	ID        string          `json:"id"`
	AuthorID  string          `json:"author_id"`
	Author    string          `json:"author"`
	ParentID  string          `json:"parent_id"`
	Content   string          `json:"content"`
	CreatedAt json.RawMessage `json:"created_at"`
}

// Load reads a snapshot file and returns its posts, deduplicated by ID.
func Load(path string) ([]model.Post, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	posts, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return posts, nil
}

// Parse decodes a snapshot from r. The snapshot must be a JSON array of
// post objects. Posts are deduplicated by ID: the entry seen last wins,
// keeping the position of the first occurrence, so re-parsing an unchanged
// snapshot always yields an identical sequence.
func Parse(r io.Reader) ([]model.Post, error) {
	var entries []snapshotEntry
	dec := json.NewDecoder(r)
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDataFormat, err)
	}

	posts := make([]model.Post, 0, len(entries))
	index := make(map[string]int, len(entries))

	for i, entry := range entries {
		post, err := entry.toPost()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		if pos, seen := index[post.ID]; seen {
			// Re-fetched snapshots may repeat a post; last seen wins.
			posts[pos] = post
			continue
		}
		index[post.ID] = len(posts)
		posts = append(posts, post)
	}

	return posts, nil
}

func (e snapshotEntry) toPost() (model.Post, error) {
	src := snapshotPost{
		ID:        e.ID,
		AuthorID:  e.AuthorID,
		Author:    e.Author,
		ParentID:  e.ParentID,
		Content:   e.Content,
		CreatedAt: e.CreatedAt,
	}
	if e.Post != nil {
		src = *e.Post
	}

	if src.ID == "" {
		return model.Post{}, fmt.Errorf("%w: post missing id", common.ErrDataFormat)
	}

	authorID := src.AuthorID
	if authorID == "" {
		authorID = src.Author
	}

	createdAt, err := parseTimestamp(src.CreatedAt)
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: post %s: %v", common.ErrDataFormat, src.ID, err)
	}

	post := model.Post{
		ID:        src.ID,
		AuthorID:  authorID,
		ParentID:  src.ParentID,
		Content:   src.Content,
		CreatedAt: createdAt,
	}
	post.Hash = post.GenerateHash()

	return post, nil
}

// parseTimestamp accepts RFC 3339 strings and Unix seconds, the two
// timestamp encodings observed in collector exports. A missing timestamp
// is allowed and left as the zero time.
func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}

	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return time.Time{}, fmt.Errorf("invalid created_at: %v", err)
		}
		ts, err := time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid created_at %q", str)
		}
		return ts, nil
	}

	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid created_at %q", s)
	}
	return time.Unix(int64(secs), 0).UTC(), nil
}
