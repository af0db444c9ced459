package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kasap-service/internal/dto"
	"kasap-service/internal/hashing"
	"kasap-service/internal/identity"
	"kasap-service/internal/models"
	"kasap-service/internal/repository"
	"kasap-service/internal/router"
	"kasap-service/internal/service"
	"kasap-service/internal/testutil"
	"kasap-service/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type api struct {
	t  *testing.T
	db *gorm.DB
	r  *gin.Engine
}

func newAPI(t *testing.T, ready func(context.Context) error) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.SetupTestSQLite(t)
	repo := repository.New(db)
	log := zap.NewNop()

	provider := identity.NewProvider(repo, hashing.NewBcrypt(bcrypt.MinCost),
		token.NewHSProvider("secret", "kasap-service", "kasap-app"), nil, nil, time.Hour, log)

	r := router.Router(router.Deps{
		Auth:     service.NewAuthService(provider, repo, log),
		Orders:   service.NewOrderService(repo, nil, nil, log),
		Calendar: service.NewCalendarService(repo, nil, log),
		Ready:    ready,
		Log:      log,
	})
	return &api{t: t, db: db, r: r}
}

func (a *api) call(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type authResp struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	AccessToken string `json:"access_token"`
	Profile     *struct {
		FirstName string `json:"first_name"`
		Language  string `json:"language"`
	} `json:"profile"`
}

type errResp struct {
	Code   string `json:"code"`
	Fields []struct {
		Field string `json:"field"`
		Tag   string `json:"tag"`
	} `json:"fields"`
}

type idResp struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (a *api) signUp(email string) authResp {
	a.t.Helper()
	w := a.call(http.MethodPost, "/api/v1/auth/sign-up", "", map[string]any{
		"email":      email,
		"password":   "secret1",
		"first_name": "Hasan",
		"last_name":  "Celik",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	u := decode[authResp](a.t, w)
	require.NotEmpty(a.t, u.AccessToken)
	return u
}

func (a *api) promote(userID string) {
	a.t.Helper()
	require.NoError(a.t, a.db.Model(&models.User{}).Where("id = ?", userID).Update("role", models.RoleButcher).Error)
}

func TestAuthFlow(t *testing.T) {
	a := newAPI(t, nil)

	u := a.signUp("hasan@example.com")
	require.NotNil(t, u.Profile)
	assert.Equal(t, "Hasan", u.Profile.FirstName)
	assert.Equal(t, "tr", u.Profile.Language)
	assert.Equal(t, "customer", u.Role)

	w := a.call(http.MethodPost, "/api/v1/auth/sign-up", "", map[string]any{
		"email": "hasan@example.com", "password": "secret1", "first_name": "H", "last_name": "C",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.CodeEmailExists, decode[errResp](t, w).Code)

	w = a.call(http.MethodPost, "/api/v1/auth/sign-up", "", map[string]any{"email": "bad", "password": "1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	e := decode[errResp](t, w)
	assert.Equal(t, "validation_error", e.Code)
	fields := map[string]string{}
	for _, f := range e.Fields {
		fields[f.Field] = f.Tag
	}
	assert.Equal(t, "email", fields["email"])
	assert.Equal(t, "min", fields["password"])
	assert.Equal(t, "required", fields["first_name"])

	w = a.call(http.MethodPost, "/api/v1/auth/sign-in", "", map[string]any{"email": "hasan@example.com", "password": "wrong1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.call(http.MethodPost, "/api/v1/auth/sign-in", "", map[string]any{"email": "hasan@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	tok := decode[authResp](t, w).AccessToken

	w = a.call(http.MethodGet, "/api/v1/auth/me", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, u.ID, decode[authResp](t, w).ID)

	w = a.call(http.MethodPatch, "/api/v1/auth/profile", tok, map[string]any{"language": "en", "first_name": "Hüseyin"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.call(http.MethodPost, "/api/v1/auth/reset-password", "", map[string]any{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = a.call(http.MethodPost, "/api/v1/auth/sign-out", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusUnauthorized, a.call(http.MethodGet, "/api/v1/auth/me", tok, nil).Code)

	assert.Equal(t, http.StatusUnauthorized, a.call(http.MethodGet, "/api/v1/orders", "", nil).Code)
}

func TestOrderAndBookingFlow(t *testing.T) {
	a := newAPI(t, nil)
	customer := a.signUp("musteri@example.com")
	other := a.signUp("komsu@example.com")
	butcher := a.signUp("kasap@example.com")
	a.promote(butcher.ID)

	// orders
	w := a.call(http.MethodPost, "/api/v1/orders", customer.AccessToken, map[string]any{
		"service_type": "kurban", "delivery_type": "personal", "total_amount": "abc",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.call(http.MethodPost, "/api/v1/orders", customer.AccessToken, map[string]any{
		"service_type": "kurban", "delivery_type": "charity", "total_amount": "3000",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "charity delivery without organization")

	w = a.call(http.MethodPost, "/api/v1/orders", customer.AccessToken, map[string]any{
		"service_type": "kurban", "delivery_type": "personal", "total_amount": "3000.00", "currency": "try",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[idResp](t, w)
	assert.Equal(t, "pending", order.Status)

	assert.Equal(t, http.StatusOK, a.call(http.MethodGet, "/api/v1/orders/"+order.ID, customer.AccessToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.call(http.MethodGet, "/api/v1/orders/"+order.ID, other.AccessToken, nil).Code)
	assert.Equal(t, http.StatusOK, a.call(http.MethodGet, "/api/v1/orders/"+order.ID, butcher.AccessToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodGet, "/api/v1/orders/not-a-uuid", customer.AccessToken, nil).Code)

	w = a.call(http.MethodGet, "/api/v1/orders?status=pending&date_to=2999-01-01", customer.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]idResp](t, w), 1)

	// staff only
	assert.Equal(t, http.StatusForbidden, a.call(http.MethodGet, "/api/v1/staff/orders", customer.AccessToken, nil).Code)

	w = a.call(http.MethodPatch, "/api/v1/staff/orders/"+order.ID+"/status", butcher.AccessToken, map[string]any{"status": "completed"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.CodeInvalidTransition, decode[errResp](t, w).Code)
	w = a.call(http.MethodPatch, "/api/v1/staff/orders/"+order.ID+"/status", butcher.AccessToken, map[string]any{"status": "scheduled", "notes": "Friday"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "scheduled", decode[idResp](t, w).Status)

	w = a.call(http.MethodGet, "/api/v1/staff/orders/statistics", butcher.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]int64](t, w)["total"])

	// slots and appointments
	day := time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")
	w = a.call(http.MethodPost, "/api/v1/staff/slots", customer.AccessToken, map[string]any{
		"date": day, "start_time": "09:00", "end_time": "10:00", "max_capacity": 1,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.call(http.MethodPost, "/api/v1/staff/slots", butcher.AccessToken, map[string]any{
		"date": day, "start_time": "09:00", "end_time": "10:00", "max_capacity": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	slot := decode[idResp](t, w)

	w = a.call(http.MethodGet, "/api/v1/slots/available?start_date="+day+"&end_date="+day, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]idResp](t, w), 1)

	w = a.call(http.MethodPost, "/api/v1/appointments", other.AccessToken, map[string]any{"time_slot_id": slot.ID, "order_id": order.ID})
	assert.Equal(t, http.StatusForbidden, w.Code, "booking against someone else's order")

	w = a.call(http.MethodPost, "/api/v1/appointments", customer.AccessToken, map[string]any{"time_slot_id": slot.ID, "order_id": order.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	appt := decode[idResp](t, w)
	assert.Equal(t, "PENDING", appt.Status)

	w = a.call(http.MethodPost, "/api/v1/appointments", other.AccessToken, map[string]any{"time_slot_id": slot.ID})
	assert.Equal(t, http.StatusConflict, w.Code, "slot is full")
	assert.Equal(t, dto.CodeSlotUnavailable, decode[errResp](t, w).Code)

	w = a.call(http.MethodGet, "/api/v1/slots/"+slot.ID+"/availability", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[map[string]any](t, w)["available"].(bool))

	w = a.call(http.MethodGet, "/api/v1/appointments/upcoming", customer.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]idResp](t, w), 1)

	assert.Equal(t, http.StatusForbidden, a.call(http.MethodPost, "/api/v1/appointments/"+appt.ID+"/cancel", other.AccessToken, nil).Code)
	w = a.call(http.MethodPost, "/api/v1/appointments/"+appt.ID+"/cancel", customer.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "CANCELLED", decode[idResp](t, w).Status)
	w = a.call(http.MethodPost, "/api/v1/appointments/"+appt.ID+"/cancel", customer.AccessToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.CodeTerminalState, decode[errResp](t, w).Code)

	w = a.call(http.MethodPost, "/api/v1/appointments", other.AccessToken, map[string]any{"time_slot_id": slot.ID})
	require.Equal(t, http.StatusCreated, w.Code, "freed seat can be booked")

	// cancellation of the order itself
	w = a.call(http.MethodPost, "/api/v1/orders/"+order.ID+"/cancel", customer.AccessToken, map[string]any{"reason": "plans changed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cancelled", decode[idResp](t, w).Status)
}

func TestHealth(t *testing.T) {
	a := newAPI(t, nil)
	assert.Equal(t, http.StatusOK, a.call(http.MethodGet, "/health", "", nil).Code)

	down := newAPI(t, func(context.Context) error { return errors.New("db down") })
	assert.Equal(t, http.StatusServiceUnavailable, down.call(http.MethodGet, "/health", "", nil).Code)
}
