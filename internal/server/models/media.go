package models

import "time"

// MediaFile is an uploaded file awaiting validation and storage.
type MediaFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Post is the subset of a feed post this core needs: its owner.
type Post struct {
	ID        string
	OwnerID   string
	Title     string
	Content   string
	CreatedAt time.Time
}

// PostMedia is one entry of a post's media list.
type PostMedia struct {
	ID          int64
	PostID      string
	URL         string
	ContentType string
	CreatedAt   time.Time
}
