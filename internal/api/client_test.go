package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/notify"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func setup(t *testing.T, r chi.Router) (*Client, *session.MemoryStore, *notify.Center) {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	center := notify.NewCenter(10, nil)
	client := New(Options{BaseURL: srv.URL + "/", RequestsPerSecond: 1000, Burst: 100}, store, center, nil)
	return client, store, center
}

func TestListDishes_EmbeddedEnvelope(t *testing.T) {
	r := chi.NewRouter()
	var gotQuery url.Values
	r.Get("/dishes", func(w http.ResponseWriter, req *http.Request) {
		gotQuery = req.URL.Query()
		writeJSON(w, http.StatusOK, map[string]any{
			"_embedded": map[string]any{
				"dishes": []map[string]any{
					{"id": "d1", "name": "Pho", "price": "45000", "availableQuantity": 3},
					{"id": "d2", "name": "Com tam", "price": 40000, "availableQuantity": 0},
				},
			},
			"page": map[string]any{"size": 2, "totalElements": 7, "totalPages": 4, "number": 1},
		})
	})
	client, _, _ := setup(t, r)

	page, err := client.ListDishes(context.Background(), models.PageQuery{PageNo: 1, PageSize: 2, SortBy: "name", SortDir: "asc"})
	require.NoError(t, err)

	assert.Equal(t, "1", gotQuery.Get("pageNo"))
	assert.Equal(t, "2", gotQuery.Get("pageSize"))
	assert.Equal(t, "name", gotQuery.Get("sortBy"))
	assert.Equal(t, "asc", gotQuery.Get("sortDir"))

	require.Len(t, page.Items, 2)
	assert.Equal(t, "Pho", page.Items[0].Name)
	assert.True(t, page.Items[1].Price.Equal(decimal.NewFromInt(40000)))
	assert.Equal(t, 7, page.Page.TotalElements)
	assert.Equal(t, 4, page.Page.TotalPages)
}

func TestDecodePage(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "missing collection", raw: `{"page":{"size":0}}`, want: 0},
		{name: "bare array", raw: `[{"id":"a"},{"id":"b"}]`, want: 2},
		{name: "empty body", raw: ``, want: 0},
		{name: "null", raw: `null`, want: 0},
		{name: "wrong shape", raw: `{"_embedded":{"addresses":{"id":"a"}}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := decodePage[models.Address](json.RawMessage(tt.raw), "addresses")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, page.Items)
			assert.Len(t, page.Items, tt.want)
		})
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnprocessableEntity, ErrBadRequest},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusInternalServerError, ErrUnexpected},
		{http.StatusBadGateway, ErrUnexpected},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			r := chi.NewRouter()
			r.Get("/dishes/{id}", func(w http.ResponseWriter, req *http.Request) {
				writeJSON(w, tt.status, map[string]string{"message": "nope"})
			})
			client, _, _ := setup(t, r)

			_, err := client.GetDish(context.Background(), "x")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.status, StatusCode(err))

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "nope", apiErr.Message)
		})
	}
}

func TestRequestHeaders(t *testing.T) {
	r := chi.NewRouter()
	var requestID, idem, auth string
	var draft models.OrderDraft
	r.Post("/orders", func(w http.ResponseWriter, req *http.Request) {
		requestID = req.Header.Get("X-Request-ID")
		idem = req.Header.Get("Idempotency-Key")
		auth = req.Header.Get("Authorization")
		_ = json.NewDecoder(req.Body).Decode(&draft)
		writeJSON(w, http.StatusCreated, map[string]any{"id": "o-1", "total": "100000", "shippingFee": "15000"})
	})
	client, store, _ := setup(t, r)
	require.NoError(t, store.SetTokens(context.Background(), models.Tokens{AccessToken: "tok"}))

	order, err := client.CreateOrder(context.Background(), models.OrderDraft{
		UserID:        "u1",
		AddressID:     "a1",
		Items:         []models.OrderDraftItem{{DishID: "d1", Quantity: 2, OptionIDs: []string{}}},
		PaymentMethod: models.PaymentCOD,
		ShippingFee:   decimal.NewFromInt(15000),
	}, "key-1")
	require.NoError(t, err)

	assert.Equal(t, "o-1", order.ID)
	assert.NotEmpty(t, requestID)
	assert.Equal(t, "key-1", idem)
	assert.Equal(t, "Bearer tok", auth)
	assert.Nil(t, draft.CouponID)
	assert.Equal(t, models.PaymentCOD, draft.PaymentMethod)
}

func TestExpiredTokenIsRefreshedThroughBackend(t *testing.T) {
	var refreshes atomic.Int32
	r := chi.NewRouter()
	r.Post("/auth/refresh-token", func(w http.ResponseWriter, req *http.Request) {
		refreshes.Add(1)
		assert.Empty(t, req.Header.Get("Authorization"), "refresh goes over the bare client")
		var body map[string]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		assert.Equal(t, "r-1", body["refreshToken"])
		writeJSON(w, http.StatusOK, models.Tokens{AccessToken: "fresh", RefreshToken: "r-2"})
	})
	r.Get("/users/profile", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, models.User{ID: "u1", Email: "a@b.c"})
	})
	client, store, _ := setup(t, r)
	ctx := context.Background()
	require.NoError(t, store.SetTokens(ctx, models.Tokens{AccessToken: "old", RefreshToken: "r-1"}))

	user, err := client.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, int32(1), refreshes.Load())

	refresh, _ := store.RefreshToken(ctx)
	assert.Equal(t, "r-2", refresh)
}

func TestSessionExpiredSurfacesAsError(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/auth/refresh-token", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "refresh token revoked"})
	})
	r.Get("/users/profile", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	client, store, center := setup(t, r)
	ctx := context.Background()
	require.NoError(t, store.SetTokens(ctx, models.Tokens{AccessToken: "old", RefreshToken: "r-1"}))

	_, err := client.Profile(ctx)
	assert.ErrorIs(t, err, ErrSessionExpired)

	access, _ := store.AccessToken(ctx)
	assert.Empty(t, access)
	assert.Len(t, center.Drain(), 1)
}

func TestSessionExpiredRunsHook(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/auth/refresh-token", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	r.Get("/orders/user/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	var expired atomic.Int32
	store := session.NewMemoryStore()
	client := New(Options{
		BaseURL:          srv.URL,
		OnSessionExpired: func() { expired.Add(1) },
	}, store, nil, nil)
	ctx := context.Background()
	require.NoError(t, store.SetTokens(ctx, models.Tokens{AccessToken: "old", RefreshToken: "r-1"}))

	_, err := client.ListOrders(ctx, "u1", models.PageQuery{})
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int32(1), expired.Load())
}

func TestConfirmReturn_ForwardsOnlyGatewayFields(t *testing.T) {
	r := chi.NewRouter()
	var got url.Values
	r.Get("/payments/return", func(w http.ResponseWriter, req *http.Request) {
		got = req.URL.Query()
		writeJSON(w, http.StatusOK, models.PaymentReturn{OrderID: "o-1", ResponseCode: "00", Success: true})
	})
	client, _, _ := setup(t, r)

	params := url.Values{
		"vnp_TxnRef":       {"o-1"},
		"vnp_ResponseCode": {"00"},
		"utm_source":       {"mail"},
	}
	res, err := client.ConfirmReturn(context.Background(), params)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "o-1", got.Get("vnp_TxnRef"))
	assert.Empty(t, got.Get("utm_source"))

	_, err = client.ConfirmReturn(context.Background(), url.Values{"foo": {"bar"}})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestCreatePaymentURL(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/payments/create-url/{orderID}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "orderID") == "empty" {
			writeJSON(w, http.StatusOK, map[string]string{})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"paymentUrl": "https://pay.example/" + chi.URLParam(req, "orderID")})
	})
	client, _, _ := setup(t, r)

	u, err := client.CreatePaymentURL(context.Background(), "o-9")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/o-9", u)

	_, err = client.CreatePaymentURL(context.Background(), "empty")
	assert.ErrorIs(t, err, ErrUnexpected)
}

func TestQuoteAndUserLists(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/geocoding/shipping-fee", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "1 Le Loi, District 1", req.URL.Query().Get("address"))
		writeJSON(w, http.StatusOK, map[string]any{"distance": 3.2, "duration": 12, "fee": "15000"})
	})
	r.Get("/coupons/not-used/user/{userID}", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"_embedded": map[string]any{"coupons": []map[string]any{{"id": "c1", "code": "SALE10", "discountPercent": 10}}},
		})
	})
	r.Get("/addresses/user/{userID}", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, []models.Address{{ID: "a1", Street: "1 Le Loi"}})
	})
	client, _, _ := setup(t, r)
	ctx := context.Background()

	quote, err := client.Quote(ctx, "1 Le Loi, District 1")
	require.NoError(t, err)
	assert.True(t, quote.Fee.Equal(decimal.NewFromInt(15000)))

	coupons, err := client.ListUnusedCoupons(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, coupons, 1)
	assert.Equal(t, "SALE10", coupons[0].Code)

	addresses, err := client.ListAddresses(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, addresses, 1)
}
