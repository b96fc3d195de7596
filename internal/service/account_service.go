package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/coupon"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/session"
	"go.uber.org/zap"
)

var (
	ErrInvalidEmail    = errors.New("email is not valid")
	ErrPasswordTooWeak = errors.New("password must be at least 6 characters")
	ErrMissingPassword = errors.New("password is required")
)

const minPasswordLength = 6

// AccountAPI is the part of the backend dealing with the user and what the
// user owns.
type AccountAPI interface {
	SignUp(ctx context.Context, req models.SignUpRequest) (models.User, error)
	SignIn(ctx context.Context, req models.SignInRequest) (models.Tokens, error)
	ForgotPassword(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error
	Profile(ctx context.Context) (models.User, error)
	UpdateProfile(ctx context.Context, user models.User) (models.User, error)
	ListAddresses(ctx context.Context, userID string) ([]models.Address, error)
	DeleteAddress(ctx context.Context, id string) error
	ListOrders(ctx context.Context, userID string, q models.PageQuery) (models.Page[models.Order], error)
}

// AccountService owns the signed-in user.
type AccountService struct {
	api       AccountAPI
	tokens    session.TokenStore
	coupons   *coupon.Book
	log       *zap.Logger
	onSignOut []func()
	now       func() time.Time

	mu   sync.RWMutex
	user *models.User
}

// NewAccountService creates a new account service. onSignOut hooks run after
// the tokens and coupons are dropped.
func NewAccountService(accounts AccountAPI, tokens session.TokenStore, coupons *coupon.Book, log *zap.Logger, onSignOut ...func()) *AccountService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountService{
		api:       accounts,
		tokens:    tokens,
		coupons:   coupons,
		log:       log,
		onSignOut: onSignOut,
		now:       time.Now,
	}
}

func (s *AccountService) SignUp(ctx context.Context, req models.SignUpRequest) (models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validateEmail(req.Email); err != nil {
		return models.User{}, err
	}
	if len(req.Password) < minPasswordLength {
		return models.User{}, ErrPasswordTooWeak
	}
	return s.api.SignUp(ctx, req)
}

// SignIn stores the tokens, loads the profile and the user's coupons.
func (s *AccountService) SignIn(ctx context.Context, req models.SignInRequest) (models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validateEmail(req.Email); err != nil {
		return models.User{}, err
	}
	if req.Password == "" {
		return models.User{}, ErrMissingPassword
	}

	tokens, err := s.api.SignIn(ctx, req)
	if err != nil {
		return models.User{}, err
	}
	if err := s.tokens.SetTokens(ctx, tokens); err != nil {
		return models.User{}, fmt.Errorf("store session: %w", err)
	}

	user, err := s.loadProfile(ctx)
	if err != nil {
		return models.User{}, err
	}
	s.log.Info("signed in", zap.String("user_id", user.ID))

	if _, err := s.coupons.Load(ctx, user.ID); err != nil {
		s.log.Warn("failed to load coupons", zap.String("user_id", user.ID), zap.Error(err))
	}
	return user, nil
}

// Restore picks up a session left in the token store by a previous run.
func (s *AccountService) Restore(ctx context.Context) (models.User, bool) {
	token, err := s.tokens.AccessToken(ctx)
	if err != nil || token == "" {
		return models.User{}, false
	}
	user, err := s.loadProfile(ctx)
	if err != nil {
		s.log.Info("stored session is not usable", zap.Error(err))
		return models.User{}, false
	}
	if _, err := s.coupons.Load(ctx, user.ID); err != nil {
		s.log.Warn("failed to load coupons", zap.String("user_id", user.ID), zap.Error(err))
	}
	return user, true
}

func (s *AccountService) loadProfile(ctx context.Context) (models.User, error) {
	user, err := s.api.Profile(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("load profile: %w", err)
	}
	if user.ID == "" {
		// some backends leave the id to the token
		if id, ok := s.tokenUserID(ctx); ok {
			user.ID = id
		}
	}
	s.setUser(&user)
	return user, nil
}

// SignOut drops the session, the coupons and whatever the hooks reset.
func (s *AccountService) SignOut(ctx context.Context) error {
	err := s.tokens.Clear(ctx)
	s.dropUser()
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// SessionExpired forgets the user after the tokens were cleared elsewhere.
func (s *AccountService) SessionExpired() {
	if u, ok := s.CurrentUser(); ok {
		s.log.Info("session expired", zap.String("user_id", u.ID))
	}
	s.dropUser()
}

func (s *AccountService) dropUser() {
	s.coupons.Reset()
	s.setUser(nil)
	for _, fn := range s.onSignOut {
		fn()
	}
}

func (s *AccountService) setUser(u *models.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// CurrentUser returns the signed-in user's profile.
func (s *AccountService) CurrentUser() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// CurrentUserID falls back to the access token claims when no profile has
// been loaded yet. Without stored tokens there is no user.
func (s *AccountService) CurrentUserID(ctx context.Context) (string, bool) {
	if !s.hasSession(ctx) {
		return "", false
	}
	if u, ok := s.CurrentUser(); ok && u.ID != "" {
		return u.ID, true
	}
	return s.tokenUserID(ctx)
}

// hasSession reports whether a token is stored. The access token alone may be
// missing while a refresh is in flight.
func (s *AccountService) hasSession(ctx context.Context) bool {
	if token, err := s.tokens.AccessToken(ctx); err == nil && token != "" {
		return true
	}
	token, err := s.tokens.RefreshToken(ctx)
	return err == nil && token != ""
}

func (s *AccountService) tokenUserID(ctx context.Context) (string, bool) {
	token, err := s.tokens.AccessToken(ctx)
	if err != nil || token == "" {
		return "", false
	}
	id, err := session.ParseIdentity(token)
	if err != nil || id.Expired(s.now()) {
		return "", false
	}
	return id.UserID, true
}

func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	return s.api.ForgotPassword(ctx, email)
}

func (s *AccountService) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	if _, ok := s.CurrentUserID(ctx); !ok {
		return ErrNotSignedIn
	}
	if req.OldPassword == "" {
		return ErrMissingPassword
	}
	if len(req.NewPassword) < minPasswordLength {
		return ErrPasswordTooWeak
	}
	return s.api.ChangePassword(ctx, req)
}

func (s *AccountService) UpdateProfile(ctx context.Context, user models.User) (models.User, error) {
	current, ok := s.CurrentUser()
	if !ok {
		return models.User{}, ErrNotSignedIn
	}
	user.ID = current.ID
	user.Email = current.Email

	updated, err := s.api.UpdateProfile(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	if updated.ID == "" {
		updated.ID = current.ID
	}
	s.setUser(&updated)
	return updated, nil
}

// Addresses lists the signed-in user's delivery addresses.
func (s *AccountService) Addresses(ctx context.Context) ([]models.Address, error) {
	userID, ok := s.CurrentUserID(ctx)
	if !ok {
		return nil, ErrNotSignedIn
	}
	return s.api.ListAddresses(ctx, userID)
}

func (s *AccountService) DeleteAddress(ctx context.Context, id string) error {
	if _, ok := s.CurrentUserID(ctx); !ok {
		return ErrNotSignedIn
	}
	return s.api.DeleteAddress(ctx, id)
}

// Orders pages through the signed-in user's order history.
func (s *AccountService) Orders(ctx context.Context, q models.PageQuery) (models.Page[models.Order], error) {
	userID, ok := s.CurrentUserID(ctx)
	if !ok {
		return models.Page[models.Order]{}, ErrNotSignedIn
	}
	return s.api.ListOrders(ctx, userID, clampPage(q))
}

func validateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}
