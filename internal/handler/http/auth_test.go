package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Register(t *testing.T) {
	t.Run("Created user without tokens", func(t *testing.T) {
		svc := &stubAuthService{
			register: func(ctx context.Context, req auth.RegisterRequest) (user.User, error) {
				return user.User{
					ID:        testMemberID,
					Email:     req.Email,
					FirstName: req.FirstName,
					Role:      user.RoleMember,
					CreatedAt: time.Now(),
				}, nil
			},
		}
		srv := newTestServer(t, svc, nil, nil, nil, nil)

		rec := srv.do(http.MethodPost, "/api/v1/auth/register", auth.RegisterRequest{
			Email:           "jane@example.com",
			FirstName:       "Jane",
			Password:        "password123",
			ConfirmPassword: "password123",
		}, "")

		assert.Equal(t, http.StatusCreated, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.True(t, env.Success)
		assert.Contains(t, string(env.Data), `"email":"jane@example.com"`)
		assert.NotContains(t, string(env.Data), "access_token")
	})

	t.Run("Validation error", func(t *testing.T) {
		srv := newTestServer(t, &stubAuthService{}, nil, nil, nil, nil)

		rec := srv.do(http.MethodPost, "/api/v1/auth/register", auth.RegisterRequest{
			Email: "not-an-email",
		}, "")

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		env := decodeEnvelope(t, rec)
		require.NotNil(t, env.Error)
		assert.Contains(t, env.Error.Details, "email")
		assert.Contains(t, env.Error.Details, "password")
	})

	t.Run("Duplicate email", func(t *testing.T) {
		svc := &stubAuthService{
			register: func(ctx context.Context, req auth.RegisterRequest) (user.User, error) {
				return user.User{}, user.ErrUserEmailExists
			},
		}
		srv := newTestServer(t, svc, nil, nil, nil, nil)

		rec := srv.do(http.MethodPost, "/api/v1/auth/register", auth.RegisterRequest{
			Email:           "jane@example.com",
			FirstName:       "Jane",
			Password:        "password123",
			ConfirmPassword: "password123",
		}, "")

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		srv := newTestServer(t, &stubAuthService{}, nil, nil, nil, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		srv.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("Sets refresh cookie", func(t *testing.T) {
		svc := &stubAuthService{
			login: func(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
				assert.NotEmpty(t, session.IPAddress)
				return auth.TokenResponse{
					AccessToken:           "access",
					AccessTokenExpiresIn:  time.Now().Add(time.Hour).Unix(),
					RefreshToken:          "refresh",
					RefreshTokenExpiresIn: time.Now().Add(24 * time.Hour).Unix(),
				}, nil
			},
		}
		srv := newTestServer(t, svc, nil, nil, nil, nil)

		rec := srv.do(http.MethodPost, "/api/v1/auth/login", auth.LoginRequest{
			Email:    "jane@example.com",
			Password: "password123",
		}, "")

		assert.Equal(t, http.StatusCreated, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "refresh_token", cookies[0].Name)
		assert.Equal(t, "refresh", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("Invalid credentials", func(t *testing.T) {
		svc := &stubAuthService{
			login: func(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
				return auth.TokenResponse{}, auth.ErrInvalidCredentials
			},
		}
		srv := newTestServer(t, svc, nil, nil, nil, nil)

		rec := srv.do(http.MethodPost, "/api/v1/auth/login", auth.LoginRequest{
			Email:    "jane@example.com",
			Password: "wrongpassword",
		}, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthHandler_LoginWithApple(t *testing.T) {
	okService := func(got *auth.AppleSignInRequest) *stubAuthService {
		return &stubAuthService{
			loginWithApple: func(ctx context.Context, req auth.AppleSignInRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
				*got = req
				return auth.TokenResponse{AccessToken: "access", RefreshToken: "refresh"}, nil
			},
		}
	}

	t.Run("Form post from Apple", func(t *testing.T) {
		var got auth.AppleSignInRequest
		srv := newTestServer(t, okService(&got), nil, nil, nil, nil)

		form := url.Values{}
		form.Set("code", "c0de")
		form.Set("id_token", "id.token.value")
		form.Set("state", "xyz")
		form.Set("user", `{"name":{"firstName":"Jane","lastName":"Doe"},"email":"jane@privaterelay.appleid.com"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login/apple-id", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		srv.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "c0de", got.Code)
		assert.Equal(t, "id.token.value", got.IDToken)
		assert.Equal(t, "xyz", got.State)
		appleUser, err := got.ParseUser()
		require.NoError(t, err)
		assert.Equal(t, "Jane", appleUser.Name.FirstName)
	})

	t.Run("JSON body", func(t *testing.T) {
		var got auth.AppleSignInRequest
		srv := newTestServer(t, okService(&got), nil, nil, nil, nil)

		rec := srv.do(http.MethodPost, "/api/v1/auth/login/apple-id", auth.AppleSignInRequest{IDToken: "id.token.value"}, "")

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "id.token.value", got.IDToken)
	})

	t.Run("Neither code nor id_token", func(t *testing.T) {
		srv := newTestServer(t, &stubAuthService{}, nil, nil, nil, nil)

		rec := srv.do(http.MethodPost, "/api/v1/auth/login/apple-id", auth.AppleSignInRequest{State: "xyz"}, "")

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("Invalid token", func(t *testing.T) {
		svc := &stubAuthService{
			loginWithApple: func(ctx context.Context, req auth.AppleSignInRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
				return auth.TokenResponse{}, auth.ErrInvalidAppleToken
			},
		}
		srv := newTestServer(t, svc, nil, nil, nil, nil)

		rec := srv.do(http.MethodPost, "/api/v1/auth/login/apple-id", auth.AppleSignInRequest{IDToken: "forged"}, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthHandler_RefreshAndLogout(t *testing.T) {
	var revoked string
	svc := &stubAuthService{
		refresh: func(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
			if req.RefreshToken == "revoked" {
				return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
			}
			return auth.AccessTokenResponse{AccessToken: "new-access"}, nil
		},
		logout: func(ctx context.Context, refreshToken string) error {
			revoked = refreshToken
			return nil
		},
	}
	srv := newTestServer(t, svc, nil, nil, nil, nil)

	t.Run("Refresh from body", func(t *testing.T) {
		rec := srv.do(http.MethodPost, "/api/v1/auth/refresh", auth.RefreshTokenRequest{RefreshToken: "valid"}, "")
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "new-access")
	})

	t.Run("Refresh from cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "revoked"})
		rec := httptest.NewRecorder()
		srv.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Logout without cookie", func(t *testing.T) {
		rec := srv.do(http.MethodPost, "/api/v1/auth/logout", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Logout clears cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "session-token"})
		rec := httptest.NewRecorder()
		srv.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "session-token", revoked)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Empty(t, cookies[0].Value)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	svc := &stubAuthService{
		me: func(ctx context.Context) (user.User, error) {
			return user.User{ID: testMemberID, Email: "member@example.com", Role: user.RoleMember}, nil
		},
	}
	srv := newTestServer(t, svc, nil, nil, nil, nil)

	t.Run("Requires token", func(t *testing.T) {
		rec := srv.do(http.MethodGet, "/api/v1/auth/me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Refresh token is not accepted", func(t *testing.T) {
		refresh, _, err := srv.jwtService.GenerateRefreshToken(testMemberID)
		require.NoError(t, err)
		rec := srv.do(http.MethodGet, "/api/v1/auth/me", nil, refresh)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Returns current user", func(t *testing.T) {
		rec := srv.do(http.MethodGet, "/api/v1/auth/me", nil, srv.token(testMemberID, user.RoleMember))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "member@example.com")
	})
}
