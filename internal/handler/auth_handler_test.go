package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"merit/config"
	"merit/internal/auth"
	"merit/internal/models"
	"merit/internal/repository"
	"merit/internal/service"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *auth.Tokens) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Suspension{}))

	tokens := auth.NewTokens(&config.JWTConfig{
		AccessSecret:  "test-access",
		RefreshSecret: "test-refresh",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 168 * time.Hour,
		Issuer:        "merit",
	})
	h := NewAuthHandler(service.NewAuthService(tokens, repository.NewUserRepository(db)))

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	return r, tokens
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_RefreshFlow(t *testing.T) {
	r, tokens := newAuthTestRouter(t)

	w := postJSON(t, r, "/auth/register", gin.H{
		"email":    "linh@example.com",
		"username": "linh",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var reg struct {
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	require.NotEmpty(t, reg.RefreshToken)

	// Redeem the refresh token for a new, verifiable access token.
	w = postJSON(t, r, "/auth/refresh", gin.H{"refresh_token": reg.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	claims, err := tokens.VerifyAccess(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "linh@example.com", claims.Email)
}

func TestAuthHandler_LoginIssuesVerifiableTokens(t *testing.T) {
	r, tokens := newAuthTestRouter(t)

	w := postJSON(t, r, "/auth/register", gin.H{
		"email":    "linh@example.com",
		"username": "linh",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, r, "/auth/login", gin.H{
		"email":    "linh@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	claims, err := tokens.VerifyAccess(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "linh@example.com", claims.Email)
	_, err = tokens.VerifyRefresh(resp.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthHandler_RefreshRejectsBadTokens(t *testing.T) {
	r, tokens := newAuthTestRouter(t)

	w := postJSON(t, r, "/auth/register", gin.H{
		"email":    "linh@example.com",
		"username": "linh",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var reg struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))

	// Garbage.
	w = postJSON(t, r, "/auth/refresh", gin.H{"refresh_token": "not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// An access token must not pass as a refresh token.
	w = postJSON(t, r, "/auth/refresh", gin.H{"refresh_token": reg.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A refresh token for a user that no longer exists is rejected too.
	orphan, err := tokens.IssueRefresh(9999)
	require.NoError(t, err)
	w = postJSON(t, r, "/auth/refresh", gin.H{"refresh_token": orphan})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Missing body field.
	w = postJSON(t, r, "/auth/refresh", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
