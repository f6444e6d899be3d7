package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/adboard/board-api/internal/core/domain"
	"github.com/adboard/board-api/internal/core/ports"
)

// memStore is an in-memory ports.Store. WithinTx restores a snapshot when fn
// fails, and deletes cascade the way the SQL schema does.
type memStore struct {
	users    map[int64]*domain.User
	ads      map[int64]*domain.Advertisement
	comments map[int64]*domain.Comment
	nextID   int64

	txCount  int
	failNext error // returned by the next repository write, then cleared
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[int64]*domain.User),
		ads:      make(map[int64]*domain.Advertisement),
		comments: make(map[int64]*domain.Comment),
	}
}

func (s *memStore) Users() ports.UserRepository                   { return memUsers{s} }
func (s *memStore) Advertisements() ports.AdvertisementRepository { return memAds{s} }
func (s *memStore) Comments() ports.CommentRepository             { return memComments{s} }
func (s *memStore) Ping(context.Context) error                    { return nil }

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Repositories) error) error {
	s.txCount++
	users, ads, comments := s.snapshot()
	if err := fn(ctx, s); err != nil {
		s.users, s.ads, s.comments = users, ads, comments
		return err
	}
	return nil
}

func (s *memStore) snapshot() (map[int64]*domain.User, map[int64]*domain.Advertisement, map[int64]*domain.Comment) {
	users := make(map[int64]*domain.User, len(s.users))
	for k, v := range s.users {
		c := *v
		users[k] = &c
	}
	ads := make(map[int64]*domain.Advertisement, len(s.ads))
	for k, v := range s.ads {
		c := *v
		ads[k] = &c
	}
	comments := make(map[int64]*domain.Comment, len(s.comments))
	for k, v := range s.comments {
		c := *v
		comments[k] = &c
	}
	return users, ads, comments
}

func (s *memStore) write() error {
	if err := s.failNext; err != nil {
		s.failNext = nil
		return err
	}
	return nil
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

// seedUser inserts an account directly, bypassing the services.
func (s *memStore) seedUser(username, hash string, role domain.Role, active bool) *domain.User {
	u := &domain.User{ID: s.id(), Username: username, PasswordHash: hash, Role: role, IsActive: active}
	s.users[u.ID] = u
	c := *u
	return &c
}

func (s *memStore) seedAdvertisement(author *domain.User, title string) *domain.Advertisement {
	a := &domain.Advertisement{ID: s.id(), Title: title, Group: domain.GroupSell, IsActive: true, Author: author.ID}
	s.ads[a.ID] = a
	c := *a
	return &c
}

func (s *memStore) seedComment(author *domain.User, adv *domain.Advertisement, body string) *domain.Comment {
	c := &domain.Comment{ID: s.id(), Body: body, Author: author.ID, AdvertisementID: adv.ID}
	s.comments[c.ID] = c
	cp := *c
	return &cp
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if err := r.s.write(); err != nil {
		return nil, err
	}
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	c := *user
	c.ID = r.s.id()
	r.s.users[c.ID] = &c
	out := c
	return &out, nil
}

func (r memUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.s.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r memUsers) Update(_ context.Context, user *domain.User) error {
	if err := r.s.write(); err != nil {
		return err
	}
	if _, ok := r.s.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, u := range r.s.users {
		if id != user.ID && u.Username == user.Username {
			return domain.ErrUserExists
		}
	}
	c := *user
	r.s.users[user.ID] = &c
	return nil
}

func (r memUsers) Delete(_ context.Context, id int64) error {
	if err := r.s.write(); err != nil {
		return err
	}
	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, id)
	for aid, a := range r.s.ads {
		if a.Author == id {
			r.s.deleteAdvertisement(aid)
		}
	}
	for cid, c := range r.s.comments {
		if c.Author == id {
			delete(r.s.comments, cid)
		}
	}
	return nil
}

func (r memUsers) List(context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) deleteAdvertisement(id int64) {
	delete(s.ads, id)
	for cid, c := range s.comments {
		if c.AdvertisementID == id {
			delete(s.comments, cid)
		}
	}
}

type memAds struct{ s *memStore }

func (r memAds) Create(_ context.Context, adv *domain.Advertisement) error {
	if err := r.s.write(); err != nil {
		return err
	}
	if _, ok := r.s.users[adv.Author]; !ok {
		return fmt.Errorf("foreign key violation: author %d", adv.Author)
	}
	adv.ID = r.s.id()
	c := *adv
	r.s.ads[adv.ID] = &c
	return nil
}

func (r memAds) FindByID(_ context.Context, id int64) (*domain.Advertisement, error) {
	a, ok := r.s.ads[id]
	if !ok {
		return nil, domain.ErrAdvertisementNotFound
	}
	c := *a
	return &c, nil
}

func (r memAds) List(_ context.Context, f ports.ListAdvertisementsFilter) ([]*domain.Advertisement, int64, error) {
	var all []*domain.Advertisement
	for _, a := range r.s.ads {
		if f.Group != "" && a.Group != f.Group {
			continue
		}
		if f.AuthorID != 0 && a.Author != f.AuthorID {
			continue
		}
		c := *a
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if f.Limit <= 0 {
		return all, total, nil
	}
	start := (f.Page - 1) * f.Limit
	if start >= len(all) {
		return []*domain.Advertisement{}, total, nil
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r memAds) Update(_ context.Context, adv *domain.Advertisement) error {
	if err := r.s.write(); err != nil {
		return err
	}
	if _, ok := r.s.ads[adv.ID]; !ok {
		return domain.ErrAdvertisementNotFound
	}
	c := *adv
	r.s.ads[adv.ID] = &c
	return nil
}

func (r memAds) Delete(_ context.Context, id int64) error {
	if err := r.s.write(); err != nil {
		return err
	}
	if _, ok := r.s.ads[id]; !ok {
		return domain.ErrAdvertisementNotFound
	}
	r.s.deleteAdvertisement(id)
	return nil
}

type memComments struct{ s *memStore }

func (r memComments) Create(_ context.Context, c *domain.Comment) error {
	if err := r.s.write(); err != nil {
		return err
	}
	c.ID = r.s.id()
	cp := *c
	r.s.comments[c.ID] = &cp
	return nil
}

func (r memComments) FindByID(_ context.Context, id int64) (*domain.Comment, error) {
	c, ok := r.s.comments[id]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	cp := *c
	return &cp, nil
}

func (r memComments) ListByAdvertisement(_ context.Context, advertisementID int64) ([]*domain.Comment, error) {
	out := []*domain.Comment{}
	for _, c := range r.s.comments {
		if c.AdvertisementID == advertisementID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memComments) Update(_ context.Context, c *domain.Comment) error {
	if err := r.s.write(); err != nil {
		return err
	}
	if _, ok := r.s.comments[c.ID]; !ok {
		return domain.ErrCommentNotFound
	}
	cp := *c
	r.s.comments[c.ID] = &cp
	return nil
}

func (r memComments) Delete(_ context.Context, id int64) error {
	if err := r.s.write(); err != nil {
		return err
	}
	if _, ok := r.s.comments[id]; !ok {
		return domain.ErrCommentNotFound
	}
	delete(r.s.comments, id)
	return nil
}

// stubHasher is a fast, salted stand-in for bcrypt: "salt$password".
type stubHasher struct {
	n       int
	hashErr error
	calls   int
}

func (h *stubHasher) Hash(password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	h.n++
	return fmt.Sprintf("%d$%s", h.n, password), nil
}

func (h *stubHasher) Verify(password, hash string) (bool, error) {
	h.calls++
	_, plain, ok := strings.Cut(hash, "$")
	if !ok {
		return false, errors.New("corrupt hash")
	}
	return plain == password, nil
}
