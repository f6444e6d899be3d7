package domain

import "time"

// Group classifies an advertisement.
type Group string

const (
	GroupSell    Group = "SELL"
	GroupBuy     Group = "BUY"
	GroupService Group = "SERVICE"
)

// Valid reports whether g is one of the known groups.
func (g Group) Valid() bool {
	switch g {
	case GroupSell, GroupBuy, GroupService:
		return true
	}
	return false
}

// Ownable is implemented by records whose mutation is restricted to their
// author or an administrator.
type Ownable interface {
	AuthorID() int64
}

// Advertisement is a board posting owned by its author.
type Advertisement struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Group     Group     `json:"group"`
	IsActive  bool      `json:"is_active"`
	Author    int64     `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Advertisement) AuthorID() int64 { return a.Author }
