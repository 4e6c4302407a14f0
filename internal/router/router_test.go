package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"refearn/config"
	"refearn/internal/database"
	"refearn/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := &config.Config{Server: config.ServerConfig{Env: "test", Port: "0"}}
	return Setup(cfg, db), db
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func signup(t *testing.T, engine *gin.Engine, name string, referrerID string) string {
	t.Helper()
	body := map[string]interface{}{"name": name}
	if referrerID != "" {
		body["referrer_id"] = referrerID
	}
	w := doJSON(t, engine, http.MethodPost, "/api/v1/signup", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: status %d body %s", name, w.Code, w.Body.String())
	}
	var resp struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.UserID == "" {
		t.Fatalf("signup %s: bad response %s", name, w.Body.String())
	}
	return resp.UserID
}

type earningsResponse struct {
	UserID    string `json:"user_id"`
	Breakdown []struct {
		Level int             `json:"level"`
		Total decimal.Decimal `json:"total"`
	} `json:"breakdown"`
	History []struct {
		Level      int             `json:"level"`
		Amount     decimal.Decimal `json:"amount"`
		FromUserID string          `json:"from_user_id"`
	} `json:"history"`
}

func getEarnings(t *testing.T, engine *gin.Engine, userID string) earningsResponse {
	t.Helper()
	w := doJSON(t, engine, http.MethodGet, "/api/v1/earnings/"+userID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("earnings %s: status %d body %s", userID, w.Code, w.Body.String())
	}
	var resp earningsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("earnings %s: bad response %s", userID, w.Body.String())
	}
	return resp
}

func TestHealthBanner(t *testing.T) {
	engine, _ := setupTest(t)
	w := doJSON(t, engine, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK || w.Body.String() != "Referral system backend is running" {
		t.Fatalf("unexpected health response: %d %q", w.Code, w.Body.String())
	}
}

func TestPurchaseDistributesTwoLevels(t *testing.T) {
	engine, _ := setupTest(t)

	a := signup(t, engine, "a", "")
	b := signup(t, engine, "b", a)
	c := signup(t, engine, "c", b)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/purchases", map[string]interface{}{
		"user_id": c, "amount": 2000,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("purchase: status %d body %s", w.Code, w.Body.String())
	}
	var resp struct {
		PurchaseID string `json:"purchase_id"`
		Earnings   []struct {
			UserID string          `json:"user_id"`
			Level  int             `json:"level"`
			Amount decimal.Decimal `json:"amount"`
		} `json:"earnings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad purchase response: %s", w.Body.String())
	}
	if resp.PurchaseID == "" || len(resp.Earnings) != 2 {
		t.Fatalf("unexpected purchase response: %s", w.Body.String())
	}

	bEarnings := getEarnings(t, engine, b)
	if len(bEarnings.Breakdown) != 1 || bEarnings.Breakdown[0].Level != 1 || !bEarnings.Breakdown[0].Total.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected breakdown for b: %+v", bEarnings.Breakdown)
	}
	if len(bEarnings.History) != 1 || bEarnings.History[0].FromUserID != c {
		t.Fatalf("unexpected history for b: %+v", bEarnings.History)
	}

	aEarnings := getEarnings(t, engine, a)
	if len(aEarnings.Breakdown) != 1 || aEarnings.Breakdown[0].Level != 2 || !aEarnings.Breakdown[0].Total.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("unexpected breakdown for a: %+v", aEarnings.Breakdown)
	}

	cEarnings := getEarnings(t, engine, c)
	if len(cEarnings.Breakdown) != 0 {
		t.Fatalf("purchaser should earn nothing, got %+v", cEarnings.Breakdown)
	}
}

func TestPurchaseBelowMinimumWritesNothing(t *testing.T) {
	engine, db := setupTest(t)
	a := signup(t, engine, "a", "")

	w := doJSON(t, engine, http.MethodPost, "/api/v1/purchases", map[string]interface{}{
		"user_id": a, "amount": 999,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", w.Code, w.Body.String())
	}

	var purchases, earnings int64
	db.Model(&models.Purchase{}).Count(&purchases)
	db.Model(&models.Earning{}).Count(&earnings)
	if purchases != 0 || earnings != 0 {
		t.Fatalf("rejected purchase left rows: %d purchases, %d earnings", purchases, earnings)
	}
}

func TestPurchaseUnknownUser(t *testing.T) {
	engine, _ := setupTest(t)
	w := doJSON(t, engine, http.MethodPost, "/api/v1/purchases", map[string]interface{}{
		"user_id": "00000000-0000-0000-0000-000000000000", "amount": 2000,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body %s", w.Code, w.Body.String())
	}
}

func TestNinthReferralRejected(t *testing.T) {
	engine, db := setupTest(t)
	root := signup(t, engine, "root", "")
	for i := 0; i < 8; i++ {
		signup(t, engine, "child", root)
	}

	w := doJSON(t, engine, http.MethodPost, "/api/v1/signup", map[string]interface{}{
		"name": "ninth", "referrer_id": root,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for the 9th referral, got %d body %s", w.Code, w.Body.String())
	}

	var n int64
	db.Model(&models.User{}).Where("referrer_id = ?", root).Count(&n)
	if n != 8 {
		t.Fatalf("expected 8 children after rejection, got %d", n)
	}
}

func TestSignupUnknownReferrer(t *testing.T) {
	engine, _ := setupTest(t)
	w := doJSON(t, engine, http.MethodPost, "/api/v1/signup", map[string]interface{}{
		"name": "x", "referrer_id": "00000000-0000-0000-0000-000000000000",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body %s", w.Code, w.Body.String())
	}
}
