package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barberbook/internal/cache"
	"github.com/BruksfildServices01/barberbook/internal/clock"
	"github.com/BruksfildServices01/barberbook/internal/config"
	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/infra/gateway"
	"github.com/BruksfildServices01/barberbook/internal/realtime"
	"github.com/BruksfildServices01/barberbook/internal/storage"
	"github.com/BruksfildServices01/barberbook/internal/testdb"
)

const secret = "test-secret"

type api struct {
	t     *testing.T
	r     *gin.Engine
	token string
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{JWTSecret: secret, MaxRequestsPerMin: 10000, CORSOrigins: "*"}
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	r := gin.New()
	RegisterRoutes(r, testdb.Open(t), cfg, Infra{
		Log:      zap.NewNop(),
		Clock:    clock.NewFixed(now),
		Location: time.UTC,
		Hub:      realtime.NewHub(zap.NewNop()),
		Gateway:  gateway.Disabled{},
		Cache:    cache.Nop{},
		Photos:   storage.NewMemoryStore(256),
		Hours:    domain.OpeningHours{OpenMinute: 9 * 60, CloseMinute: 18 * 60},
	})

	return &api{t: t, r: r, token: signToken(t, "owner")}
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  uuid.NewString(),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func (a *api) do(method, path string, body any) (int, map[string]any) {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w.Code, out
}

func (a *api) create(path string, body any) string {
	a.t.Helper()
	code, out := a.do(http.MethodPost, path, body)
	if code != http.StatusCreated {
		a.t.Fatalf("POST %s: expected 201, got %d %v", path, code, out)
	}
	id, _ := out["id"].(string)
	return id
}

func TestBookingFlow(t *testing.T) {
	a := newAPI(t)

	providerID := a.create("/api/providers", map[string]any{"name": "Avery Fade"})
	serviceID := a.create("/api/services", map[string]any{"name": "Classic Cut", "duration_min": 30, "price": 30})
	clientID := a.create("/api/clients", map[string]any{"name": "Jordan Miles"})

	booking := map[string]any{
		"client_id":   clientID,
		"provider_id": providerID,
		"service_id":  serviceID,
		"date":        "2025-03-10",
		"time":        "10:00",
	}
	bookingID := a.create("/api/bookings", booking)

	booking["time"] = "10:15"
	code, out := a.do(http.MethodPost, "/api/bookings", booking)
	if code != http.StatusConflict || out["error_code"] != "time_conflict" {
		t.Fatalf("expected 409 time_conflict, got %d %v", code, out)
	}

	code, out = a.do(http.MethodPatch, "/api/bookings/"+bookingID+"/status", map[string]any{"status": "completed"})
	if code != http.StatusOK || out["status"] != "completed" {
		t.Fatalf("expected completed, got %d %v", code, out)
	}

	code, out = a.do(http.MethodGet, "/api/clients/"+clientID+"/loyalty", nil)
	if code != http.StatusOK || out["visits"] != float64(1) || out["visits_until_reward"] != float64(9) {
		t.Fatalf("unexpected loyalty %d %v", code, out)
	}

	code, out = a.do(http.MethodPost, "/api/bookings/"+bookingID+"/pay", nil)
	if code != http.StatusServiceUnavailable || out["error_code"] != "payment_unavailable" {
		t.Fatalf("expected 503 payment_unavailable, got %d %v", code, out)
	}

	code, out = a.do(http.MethodGet, "/api/bookings?date=2025-03-10", nil)
	if code != http.StatusOK || out["total"] != float64(1) {
		t.Fatalf("expected one booking listed, got %d %v", code, out)
	}
}

func TestValidationAndNotFound(t *testing.T) {
	a := newAPI(t)

	code, out := a.do(http.MethodPost, "/api/services", map[string]any{"name": "Cut", "duration_min": 9999})
	if code != http.StatusBadRequest || out["error_code"] != "invalid_duration" {
		t.Fatalf("expected 400 invalid_duration, got %d %v", code, out)
	}

	code, _ = a.do(http.MethodGet, "/api/bookings/"+uuid.NewString(), nil)
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}

	code, _ = a.do(http.MethodGet, "/api/bookings/not-a-uuid", nil)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", code)
	}
}

func TestWaitlistKiosk(t *testing.T) {
	a := newAPI(t)
	a.token = ""

	code, out := a.do(http.MethodPost, "/api/public/waitlist", map[string]any{"client_name": "Walk-in"})
	if code != http.StatusCreated || out["position"] != float64(1) || out["estimated_wait_minutes"] != float64(30) {
		t.Fatalf("unexpected join response %d %v", code, out)
	}

	code, _ = a.do(http.MethodGet, "/api/waitlist", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("staff board must require a token, got %d", code)
	}
}

func TestOwnerOnlyRoutes(t *testing.T) {
	a := newAPI(t)
	providerID := a.create("/api/providers", map[string]any{"name": "Avery Fade"})

	owner := a.token
	a.token = signToken(t, "staff")

	if code, out := a.do(http.MethodDelete, "/api/providers/"+providerID, nil); code != http.StatusForbidden {
		t.Fatalf("staff delete: expected 403, got %d %v", code, out)
	}
	if code, _ := a.do(http.MethodGet, "/api/audit-logs", nil); code != http.StatusForbidden {
		t.Fatalf("staff audit logs: expected 403, got %d", code)
	}
	if code, _ := a.do(http.MethodGet, "/api/providers/"+providerID, nil); code != http.StatusOK {
		t.Fatalf("staff read: expected 200, got %d", code)
	}

	a.token = owner
	if code, out := a.do(http.MethodDelete, "/api/providers/"+providerID, nil); code != http.StatusNoContent {
		t.Fatalf("owner delete: expected 204, got %d %v", code, out)
	}
}

func TestWebSocketNeedsToken(t *testing.T) {
	a := newAPI(t)
	a.token = ""

	if code, _ := a.do(http.MethodGet, "/ws", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", code)
	}
	if code, _ := a.do(http.MethodGet, "/ws?token=garbage", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with a bad token, got %d", code)
	}
}
