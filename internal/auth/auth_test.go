package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	ts := NewTokenService("secret", "malstats", time.Hour)

	tok, exp, err := ts.Sign("ops")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := ts.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Operator)
	assert.NotEmpty(t, claims.ID)

	_, err = NewTokenService("other", "malstats", time.Hour).Parse(tok)
	assert.Error(t, err)
	_, err = NewTokenService("secret", "someone-else", time.Hour).Parse(tok)
	assert.Error(t, err)
}

func TestExpiredAndMissingSecret(t *testing.T) {
	tok, _, err := NewTokenService("secret", "", -time.Minute).Sign("ops")
	require.NoError(t, err)
	_, err = NewTokenService("secret", "", time.Hour).Parse(tok)
	assert.Error(t, err)

	_, _, err = TokenService{}.Sign("ops")
	assert.ErrorIs(t, err, ErrSecretRequired)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ts := NewTokenService("secret", "malstats", time.Hour)
	r := gin.New()
	r.GET("/private", AuthMiddleware(ts), func(c *gin.Context) {
		c.String(http.StatusOK, MustGetClaims(c).Operator)
	})

	tok, _, err := ts.Sign("ops")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + tok, http.StatusOK},
		{"lowercase scheme", "bearer " + tok, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.code, w.Code)
			if tc.code == http.StatusOK {
				assert.Equal(t, "ops", w.Body.String())
			}
		})
	}
}
