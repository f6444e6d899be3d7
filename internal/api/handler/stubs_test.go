package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/adboard/board-api/internal/api/middleware"
	"github.com/adboard/board-api/internal/core/domain"
	"github.com/adboard/board-api/internal/core/ports"
)

// newContext builds an echo context for a JSON request. identity, when non-nil,
// is stored the way the Auth middleware stores it.
func newContext(method, target, body string, identity *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if identity != nil {
		c.Set(middleware.IdentityKey, identity)
	}
	return c, rec
}

var (
	alice = &domain.User{ID: 1, Username: "alice", Role: domain.RoleUser, IsActive: true}
	root  = &domain.User{ID: 2, Username: "root", Role: domain.RoleAdmin, IsActive: true}
)

type stubAuthService struct {
	registerFn func(ctx context.Context, username, password string) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (*ports.AccessToken, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	return s.registerFn(ctx, username, password)
}

func (s *stubAuthService) Authenticate(context.Context, string, string) (*domain.User, error) {
	panic("not used by handlers")
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*ports.AccessToken, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) ResolveCurrentIdentity(context.Context, string) (*domain.User, error) {
	panic("not used by handlers")
}

type stubUserService struct {
	profileFn       func(ctx context.Context, identity *domain.User) (*ports.Profile, error)
	updateProfileFn func(ctx context.Context, identity *domain.User, input ports.UpdateProfileInput) (*domain.User, error)
	deleteAccountFn func(ctx context.Context, identity *domain.User) error
	listFn          func(ctx context.Context, identity *domain.User) ([]*domain.User, error)
	adminUpdateFn   func(ctx context.Context, identity *domain.User, username string, input ports.AdminUpdateInput) (*domain.User, error)
	adminDeleteFn   func(ctx context.Context, identity *domain.User, username string) error
}

func (s *stubUserService) Profile(ctx context.Context, identity *domain.User) (*ports.Profile, error) {
	return s.profileFn(ctx, identity)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, identity *domain.User, input ports.UpdateProfileInput) (*domain.User, error) {
	return s.updateProfileFn(ctx, identity, input)
}

func (s *stubUserService) DeleteAccount(ctx context.Context, identity *domain.User) error {
	return s.deleteAccountFn(ctx, identity)
}

func (s *stubUserService) List(ctx context.Context, identity *domain.User) ([]*domain.User, error) {
	return s.listFn(ctx, identity)
}

func (s *stubUserService) AdminUpdate(ctx context.Context, identity *domain.User, username string, input ports.AdminUpdateInput) (*domain.User, error) {
	return s.adminUpdateFn(ctx, identity, username, input)
}

func (s *stubUserService) AdminDelete(ctx context.Context, identity *domain.User, username string) error {
	return s.adminDeleteFn(ctx, identity, username)
}

type stubAdvertisementService struct {
	listFn   func(ctx context.Context, input ports.ListAdvertisementsInput) (*ports.ListAdvertisementsResult, error)
	getFn    func(ctx context.Context, id int64) (*domain.Advertisement, error)
	createFn func(ctx context.Context, identity *domain.User, input ports.CreateAdvertisementInput) (*ports.CreateAdvertisementResult, error)
	updateFn func(ctx context.Context, identity *domain.User, id int64, input ports.UpdateAdvertisementInput) (*domain.Advertisement, error)
	deleteFn func(ctx context.Context, identity *domain.User, id int64) (*domain.Advertisement, error)
}

func (s *stubAdvertisementService) List(ctx context.Context, input ports.ListAdvertisementsInput) (*ports.ListAdvertisementsResult, error) {
	return s.listFn(ctx, input)
}

func (s *stubAdvertisementService) Get(ctx context.Context, id int64) (*domain.Advertisement, error) {
	return s.getFn(ctx, id)
}

func (s *stubAdvertisementService) Create(ctx context.Context, identity *domain.User, input ports.CreateAdvertisementInput) (*ports.CreateAdvertisementResult, error) {
	return s.createFn(ctx, identity, input)
}

func (s *stubAdvertisementService) Update(ctx context.Context, identity *domain.User, id int64, input ports.UpdateAdvertisementInput) (*domain.Advertisement, error) {
	return s.updateFn(ctx, identity, id, input)
}

func (s *stubAdvertisementService) Delete(ctx context.Context, identity *domain.User, id int64) (*domain.Advertisement, error) {
	return s.deleteFn(ctx, identity, id)
}

type stubCommentService struct {
	listFn   func(ctx context.Context, advertisementID int64) ([]*domain.Comment, error)
	createFn func(ctx context.Context, identity *domain.User, advertisementID int64, body string) (*domain.Comment, error)
	updateFn func(ctx context.Context, identity *domain.User, advertisementID, commentID int64, body string) (*domain.Comment, error)
	deleteFn func(ctx context.Context, identity *domain.User, advertisementID, commentID int64) (*domain.Comment, error)
}

func (s *stubCommentService) List(ctx context.Context, advertisementID int64) ([]*domain.Comment, error) {
	return s.listFn(ctx, advertisementID)
}

func (s *stubCommentService) Create(ctx context.Context, identity *domain.User, advertisementID int64, body string) (*domain.Comment, error) {
	return s.createFn(ctx, identity, advertisementID, body)
}

func (s *stubCommentService) Update(ctx context.Context, identity *domain.User, advertisementID, commentID int64, body string) (*domain.Comment, error) {
	return s.updateFn(ctx, identity, advertisementID, commentID, body)
}

func (s *stubCommentService) Delete(ctx context.Context, identity *domain.User, advertisementID, commentID int64) (*domain.Comment, error) {
	return s.deleteFn(ctx, identity, advertisementID, commentID)
}
