package domain

import "time"

// Comment is a reply attached to an advertisement.
type Comment struct {
	ID              int64     `json:"id"`
	Body            string    `json:"body"`
	Author          int64     `json:"author_id"`
	AdvertisementID int64     `json:"advertisement_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (c *Comment) AuthorID() int64 { return c.Author }
