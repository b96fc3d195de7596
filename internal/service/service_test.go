package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/api"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/coupon"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fakeBackend implements CatalogAPI, AccountAPI and coupon.Source.
type fakeBackend struct {
	dishes    map[string]models.Dish
	tokens    models.Tokens
	signInErr error
	profile   models.User
	coupons   []models.Coupon
	addresses []models.Address
	reviews   []models.Review
	queries   []models.PageQuery
	orderUser string
}

func (f *fakeBackend) ListDishes(_ context.Context, q models.PageQuery) (models.Page[models.Dish], error) {
	f.queries = append(f.queries, q)
	page := models.Page[models.Dish]{Items: []models.Dish{}}
	for _, dish := range f.dishes {
		page.Items = append(page.Items, dish)
	}
	return page, nil
}

func (f *fakeBackend) GetDish(_ context.Context, id string) (models.Dish, error) {
	dish, ok := f.dishes[id]
	if !ok {
		return models.Dish{}, &api.Error{StatusCode: 404, Err: api.ErrNotFound}
	}
	return dish, nil
}

func (f *fakeBackend) ListBlogs(context.Context, models.PageQuery) (models.Page[models.Blog], error) {
	return models.Page[models.Blog]{Items: []models.Blog{}}, nil
}

func (f *fakeBackend) GetBlog(_ context.Context, id string) (models.Blog, error) {
	return models.Blog{}, &api.Error{StatusCode: 404, Err: api.ErrNotFound}
}

func (f *fakeBackend) ListReviews(context.Context, string, models.PageQuery) (models.Page[models.Review], error) {
	return models.Page[models.Review]{Items: f.reviews}, nil
}

func (f *fakeBackend) CreateReview(_ context.Context, r models.Review) (models.Review, error) {
	r.ID = "r1"
	f.reviews = append(f.reviews, r)
	return r, nil
}

func (f *fakeBackend) SignUp(_ context.Context, req models.SignUpRequest) (models.User, error) {
	return models.User{ID: "new", Email: req.Email}, nil
}

func (f *fakeBackend) SignIn(context.Context, models.SignInRequest) (models.Tokens, error) {
	return f.tokens, f.signInErr
}

func (f *fakeBackend) ForgotPassword(context.Context, string) error { return nil }

func (f *fakeBackend) ChangePassword(context.Context, models.ChangePasswordRequest) error { return nil }

func (f *fakeBackend) Profile(context.Context) (models.User, error) { return f.profile, nil }

func (f *fakeBackend) UpdateProfile(_ context.Context, u models.User) (models.User, error) {
	return u, nil
}

func (f *fakeBackend) ListAddresses(context.Context, string) ([]models.Address, error) {
	return f.addresses, nil
}

func (f *fakeBackend) DeleteAddress(context.Context, string) error { return nil }

func (f *fakeBackend) ListOrders(_ context.Context, userID string, q models.PageQuery) (models.Page[models.Order], error) {
	f.orderUser = userID
	f.queries = append(f.queries, q)
	return models.Page[models.Order]{Items: []models.Order{}}, nil
}

func (f *fakeBackend) ListUnusedCoupons(context.Context, string) ([]models.Coupon, error) {
	return f.coupons, nil
}

type staticIdentity string

func (s staticIdentity) CurrentUserID(context.Context) (string, bool) { return string(s), s != "" }

func pho() models.Dish {
	return models.Dish{
		ID:                "d1",
		Name:              "Pho",
		Price:             d("45000"),
		AvailableQuantity: 5,
		OptionGroups: []models.OptionGroup{
			{ID: "size", Name: "Size", Required: true, Options: []models.Option{
				{ID: "S", Name: "Small", AdditionalPrice: d("0")},
				{ID: "L", Name: "Large", AdditionalPrice: d("10000")},
			}},
			{ID: "top", Name: "Toppings", MaxSelect: 2, Options: []models.Option{
				{ID: "egg", Name: "Egg", AdditionalPrice: d("5000")},
				{ID: "beef", Name: "Beef", AdditionalPrice: d("15000")},
				{ID: "tendon", Name: "Tendon", AdditionalPrice: d("12000")},
			}},
		},
	}
}

func TestCartService_AddDish(t *testing.T) {
	backend := &fakeBackend{dishes: map[string]models.Dish{"d1": pho()}}
	svc := NewCartService(NewCatalogService(backend, staticIdentity("")), cart.NewStore())
	ctx := context.Background()

	tests := []struct {
		name    string
		req     AddToCartRequest
		wantErr error
	}{
		{
			name: "valid with toppings",
			req:  AddToCartRequest{DishID: "d1", Quantity: 1, Options: []OptionChoice{{"size", "L"}, {"top", "egg"}, {"top", "beef"}}},
		},
		{
			name:    "missing required size",
			req:     AddToCartRequest{DishID: "d1", Quantity: 1, Options: []OptionChoice{{"top", "egg"}}},
			wantErr: ErrMissingOption,
		},
		{
			name:    "too many toppings",
			req:     AddToCartRequest{DishID: "d1", Quantity: 1, Options: []OptionChoice{{"size", "S"}, {"top", "egg"}, {"top", "beef"}, {"top", "tendon"}}},
			wantErr: ErrTooManyOptions,
		},
		{
			name:    "two sizes",
			req:     AddToCartRequest{DishID: "d1", Quantity: 1, Options: []OptionChoice{{"size", "S"}, {"size", "L"}}},
			wantErr: ErrTooManyOptions,
		},
		{
			name:    "unknown option",
			req:     AddToCartRequest{DishID: "d1", Quantity: 1, Options: []OptionChoice{{"size", "XL"}}},
			wantErr: ErrUnknownOption,
		},
		{
			name:    "duplicate option",
			req:     AddToCartRequest{DishID: "d1", Quantity: 1, Options: []OptionChoice{{"size", "S"}, {"top", "egg"}, {"top", "egg"}}},
			wantErr: ErrDuplicateOption,
		},
		{
			name:    "zero quantity",
			req:     AddToCartRequest{DishID: "d1", Quantity: 0, Options: []OptionChoice{{"size", "S"}}},
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "unknown dish",
			req:     AddToCartRequest{DishID: "nope", Quantity: 1},
			wantErr: ErrDishNotFound,
		},
		{
			name:    "more than stock",
			req:     AddToCartRequest{DishID: "d1", Quantity: 9, Options: []OptionChoice{{"size", "S"}}},
			wantErr: cart.ErrExceedsAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddDish(ctx, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	st := svc.Snapshot()
	require.Equal(t, 1, st.Len())
	item := st.Items()[0]
	assert.True(t, item.UnitPrice.Equal(d("45000")))
	assert.Equal(t, 5, item.AvailableQuantity)
	assert.True(t, item.ItemPrice().Equal(d("75000")))
}

func TestCartService_SlotLookupIgnoresPickOrder(t *testing.T) {
	backend := &fakeBackend{dishes: map[string]models.Dish{"d1": pho()}}
	svc := NewCartService(backend, cart.NewStore())
	ctx := context.Background()

	_, err := svc.AddDish(ctx, AddToCartRequest{DishID: "d1", Quantity: 1, Options: []OptionChoice{{"top", "egg"}, {"size", "L"}}})
	require.NoError(t, err)
	_, err = svc.AddDish(ctx, AddToCartRequest{DishID: "d1", Quantity: 1, Options: []OptionChoice{{"size", "L"}, {"top", "egg"}}})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Snapshot().Len())

	st, err := svc.UpdateQuantity(ctx, "d1", []OptionChoice{{"size", "L"}, {"top", "egg"}}, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, st.QuantityOf("d1"))

	st = svc.Remove(ctx, "d1", []OptionChoice{{"top", "egg"}, {"size", "L"}})
	assert.True(t, st.IsEmpty())
}

func TestCatalogService(t *testing.T) {
	backend := &fakeBackend{dishes: map[string]models.Dish{"d1": pho()}}
	ctx := context.Background()

	_, err := NewCatalogService(backend, staticIdentity("")).ListDishes(ctx, models.PageQuery{PageSize: 500, SortDir: "sideways"})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, backend.queries[0].PageSize)
	assert.Empty(t, backend.queries[0].SortDir)

	_, err = NewCatalogService(backend, staticIdentity("")).GetBlog(ctx, "b9")
	assert.ErrorIs(t, err, ErrBlogNotFound)

	_, err = NewCatalogService(backend, staticIdentity("")).CreateReview(ctx, models.Review{DishID: "d1", Rating: 5})
	assert.ErrorIs(t, err, ErrNotSignedIn)

	signedIn := NewCatalogService(backend, staticIdentity("u1"))
	_, err = signedIn.CreateReview(ctx, models.Review{DishID: "d1", Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidReview)

	review, err := signedIn.CreateReview(ctx, models.Review{DishID: "d1", Rating: 4, Comment: "  good  "})
	require.NoError(t, err)
	assert.Equal(t, "u1", review.UserID)
	assert.Equal(t, "good", review.Comment)
}

func accessToken(t *testing.T, userID string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"exp":    exp.Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func TestAccountService_SignInAndOut(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{
		tokens:  models.Tokens{AccessToken: "a", RefreshToken: "r"},
		profile: models.User{ID: "u1", Email: "a@b.c"},
		coupons: []models.Coupon{{ID: "c1", Code: "TEN", DiscountPercent: d("10"), MaxDiscount: d("15000")}},
	}
	tokens := session.NewMemoryStore()
	book := coupon.NewBook(backend, coupon.NewResolver(0))
	hookCalls := 0
	svc := NewAccountService(backend, tokens, book, nil, func() { hookCalls++ })

	_, err := svc.SignIn(ctx, models.SignInRequest{Email: "not-an-email", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	user, err := svc.SignIn(ctx, models.SignInRequest{Email: " a@b.c ", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	access, _ := tokens.AccessToken(ctx)
	assert.Equal(t, "a", access)
	assert.Len(t, book.Coupons(), 1)

	id, ok := svc.CurrentUserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", id)

	_, err = book.Apply("TEN")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx))
	_, ok = svc.CurrentUserID(ctx)
	assert.False(t, ok)
	_, applied := book.Applied()
	assert.False(t, applied)
	assert.Empty(t, book.Coupons())
	assert.Equal(t, 1, hookCalls)
	refresh, _ := tokens.RefreshToken(ctx)
	assert.Empty(t, refresh)
}

func TestAccountService_ExpiredSessionHasNoUser(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{
		tokens:  models.Tokens{AccessToken: "a", RefreshToken: "r"},
		profile: models.User{ID: "u1", Email: "a@b.c"},
		coupons: []models.Coupon{{ID: "c1", Code: "TEN", DiscountPercent: d("10"), MaxDiscount: d("15000")}},
	}
	tokens := session.NewMemoryStore()
	book := coupon.NewBook(backend, coupon.NewResolver(0))
	hookCalls := 0
	svc := NewAccountService(backend, tokens, book, nil, func() { hookCalls++ })

	_, err := svc.SignIn(ctx, models.SignInRequest{Email: "a@b.c", Password: "secret"})
	require.NoError(t, err)
	_, err = book.Apply("TEN")
	require.NoError(t, err)

	// the gateway clears the tokens when it gives up
	require.NoError(t, tokens.Clear(ctx))
	_, ok := svc.CurrentUserID(ctx)
	assert.False(t, ok)

	svc.SessionExpired()
	_, ok = svc.CurrentUser()
	assert.False(t, ok)
	_, applied := book.Applied()
	assert.False(t, applied)
	assert.Empty(t, book.Coupons())
	assert.Equal(t, 1, hookCalls)
}

func TestAccountService_SignInFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{signInErr: &api.Error{StatusCode: 400, Message: "wrong password", Err: api.ErrBadRequest}}
	tokens := session.NewMemoryStore()
	svc := NewAccountService(backend, tokens, coupon.NewBook(backend, coupon.NewResolver(0)), nil)

	_, err := svc.SignIn(ctx, models.SignInRequest{Email: "a@b.c", Password: "bad"})
	assert.ErrorIs(t, err, api.ErrBadRequest)
	access, _ := tokens.AccessToken(ctx)
	assert.Empty(t, access)
}

func TestAccountService_UserIDFromToken(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{}
	tokens := session.NewMemoryStore()
	svc := NewAccountService(backend, tokens, coupon.NewBook(backend, coupon.NewResolver(0)), nil)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	require.NoError(t, tokens.SetTokens(ctx, models.Tokens{AccessToken: accessToken(t, "u7", now.Add(time.Hour))}))
	id, ok := svc.CurrentUserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u7", id)

	_, err := svc.Orders(ctx, models.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, "u7", backend.orderUser)

	require.NoError(t, tokens.SetTokens(ctx, models.Tokens{AccessToken: accessToken(t, "u7", now.Add(-time.Hour))}))
	_, ok = svc.CurrentUserID(ctx)
	assert.False(t, ok, "expired token carries no identity")

	_, err = svc.Addresses(ctx)
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestAccountService_Validation(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{}
	svc := NewAccountService(backend, session.NewMemoryStore(), coupon.NewBook(backend, coupon.NewResolver(0)), nil)

	_, err := svc.SignUp(ctx, models.SignUpRequest{Email: "a@b.c", Password: "123"})
	assert.ErrorIs(t, err, ErrPasswordTooWeak)

	err = svc.ForgotPassword(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	err = svc.ChangePassword(ctx, models.ChangePasswordRequest{OldPassword: "a", NewPassword: "bbbbbb"})
	assert.ErrorIs(t, err, ErrNotSignedIn)

	_, err = svc.UpdateProfile(ctx, models.User{FullName: "X"})
	assert.True(t, errors.Is(err, ErrNotSignedIn))
}
