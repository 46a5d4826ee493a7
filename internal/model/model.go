// Package model defines the wire types shared by the gateway client,
// the screens, and the stub backend.
package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Count decodes a JSON integer that the backend serializes as a quoted
// string (SQL COUNT results pass through as text). It marshals back to
// the same quoted form.
type Count int64

// UnmarshalJSON accepts both a bare number and a quoted number.
func (c *Count) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	data = bytes.Trim(data, `"`)
	if len(data) == 0 {
		*c = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*c = Count(n)
	return nil
}

// MarshalJSON emits the quoted form the production backend uses.
func (c Count) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatInt(int64(c), 10))), nil
}

// Post is one post as served by the backend. Likes is the set of user ids
// that have liked the post, serialized as an array.
type Post struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	AuthorID  int64     `json:"user_id"`
	Username  string    `json:"username"`
	Likes     []int64   `json:"likes"`
}

// LikedBy reports whether userID is in the likes set.
func (p *Post) LikedBy(userID int64) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// AddLike inserts userID into the likes set. No-op if already present.
func (p *Post) AddLike(userID int64) {
	if p.LikedBy(userID) {
		return
	}
	p.Likes = append(p.Likes, userID)
}

// RemoveLike deletes userID from the likes set. No-op if absent.
func (p *Post) RemoveLike(userID int64) {
	for i, id := range p.Likes {
		if id == userID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return
		}
	}
}

// Edited reports whether the post has been edited since creation.
func (p *Post) Edited() bool {
	return !p.UpdatedAt.Equal(p.CreatedAt)
}

// Clone returns a copy whose likes set is independent of the receiver's.
func (p Post) Clone() Post {
	out := p
	out.Likes = append([]int64(nil), p.Likes...)
	return out
}

// Profile is a denormalized, point-in-time snapshot of a user and the
// counts incident to the follow relation. It is fetched per view and
// never kept in sync with other open screens.
type Profile struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	FollowerCount  Count  `json:"follower_count"`
	FollowingCount Count  `json:"following_count"`
	IsFollowing    bool   `json:"is_following"`
}

// User is a follower/following list entry.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// AuthResult is the payload of a successful login or signup. Login
// responses carry the user id as "userId", signup responses as "user";
// both decode into UserID.
type AuthResult struct {
	Token    string
	UserID   int64
	Username string
}

// UnmarshalJSON reconciles the two id field names the backend uses.
func (a *AuthResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Token    string `json:"token"`
		UserID   *int64 `json:"userId"`
		User     *int64 `json:"user"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Token = raw.Token
	a.Username = raw.Username
	switch {
	case raw.UserID != nil:
		a.UserID = *raw.UserID
	case raw.User != nil:
		a.UserID = *raw.User
	}
	return nil
}
