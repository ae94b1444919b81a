package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/auth/gate"
	"storefront/internal/auth/token"
	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/user/service"
)

type mockCredentialService struct {
	RegisterFunc      func(ctx context.Context, in service.RegisterInput) (*domain.User, error)
	LoginFunc         func(ctx context.Context, email, password string) (*service.LoginResult, error)
	ResetPasswordFunc func(ctx context.Context, email, answer, newPassword string) error
	UpdateProfileFunc func(ctx context.Context, userID string, in service.ProfileInput) (*domain.User, error)
}

func (m *mockCredentialService) Register(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
	return m.RegisterFunc(ctx, in)
}

func (m *mockCredentialService) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	return m.LoginFunc(ctx, email, password)
}

func (m *mockCredentialService) ResetPassword(ctx context.Context, email, answer, newPassword string) error {
	return m.ResetPasswordFunc(ctx, email, answer, newPassword)
}

func (m *mockCredentialService) UpdateProfile(ctx context.Context, userID string, in service.ProfileInput) (*domain.User, error) {
	return m.UpdateProfileFunc(ctx, userID, in)
}

func newRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(method, path, bytes.NewReader(data))
}

func validRegisterRequest() dto.RegisterRequest {
	return dto.RegisterRequest{
		Name:     "Ana",
		Email:    "a@x.com",
		Password: "pw123",
		Phone:    "555-0100",
		Address:  "1 Main St",
		Answer:   "blue",
	}
}

func TestRegister_Success(t *testing.T) {
	var got service.RegisterInput
	svc := &mockCredentialService{
		RegisterFunc: func(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
			got = in
			return &domain.User{ID: "u-1", Name: in.Name, Email: in.Email, Role: domain.RoleBuyer, PasswordHash: "hash"}, nil
		},
	}
	ctrl := NewAuthController(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.Register(rec, newRequest(t, http.MethodPost, "/api/v1/auth/register", validRegisterRequest()))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "blue", got.Answer)
	assert.NotContains(t, rec.Body.String(), "hash")

	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "u-1", resp.User.ID)
	assert.Equal(t, "buyer", resp.User.Role)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *dto.RegisterRequest)
		wantField string
	}{
		{name: "missing name", mutate: func(r *dto.RegisterRequest) { r.Name = " " }, wantField: "name"},
		{name: "missing answer", mutate: func(r *dto.RegisterRequest) { r.Answer = "" }, wantField: "answer"},
		{name: "bad email", mutate: func(r *dto.RegisterRequest) { r.Email = "not-an-email" }, wantField: "email"},
		{name: "display name email", mutate: func(r *dto.RegisterRequest) { r.Email = "Ana <a@x.com>" }, wantField: "email"},
		{name: "missing password", mutate: func(r *dto.RegisterRequest) { r.Password = "" }, wantField: "password"},
		{name: "long password", mutate: func(r *dto.RegisterRequest) { r.Password = strings.Repeat("p", 73) }, wantField: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockCredentialService{
				RegisterFunc: func(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
					t.Fatal("service must not be called")
					return nil, nil
				},
			}
			ctrl := NewAuthController(svc, zap.NewNop())
			req := validRegisterRequest()
			tt.mutate(&req)

			rec := httptest.NewRecorder()
			ctrl.Register(rec, newRequest(t, http.MethodPost, "/api/v1/auth/register", req))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"field":"`+tt.wantField+`"`)
		})
	}
}

func TestRegister_DuplicateContact(t *testing.T) {
	svc := &mockCredentialService{
		RegisterFunc: func(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
			return nil, apperrors.NewCodedValidationError(apperrors.CodeDuplicateContact, "email is already registered")
		},
	}
	ctrl := NewAuthController(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.Register(rec, newRequest(t, http.MethodPost, "/api/v1/auth/register", validRegisterRequest()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), apperrors.CodeDuplicateContact)
}

func TestRegister_InvalidJSON(t *testing.T) {
	ctrl := NewAuthController(&mockCredentialService{}, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.Register(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON body")
}

func TestLogin_Success(t *testing.T) {
	svc := &mockCredentialService{
		LoginFunc: func(ctx context.Context, email, password string) (*service.LoginResult, error) {
			assert.Equal(t, "a@x.com", email)
			assert.Equal(t, "pw123", password)
			return &service.LoginResult{
				User:      &domain.User{ID: "u-1", Email: email, Role: domain.RoleBuyer},
				Token:     "signed.token.value",
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
	ctrl := NewAuthController(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.Login(rec, newRequest(t, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: "a@x.com", Password: "pw123"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "signed.token.value", resp.Token)
	assert.Equal(t, "a@x.com", resp.User.Email)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := &mockCredentialService{
		LoginFunc: func(ctx context.Context, email, password string) (*service.LoginResult, error) {
			return nil, apperrors.NewUnauthenticatedError("invalid email or password", nil)
		},
	}
	ctrl := NewAuthController(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.Login(rec, newRequest(t, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: "a@x.com", Password: "wrong"}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password")
}

func TestLogin_MissingFields(t *testing.T) {
	ctrl := NewAuthController(&mockCredentialService{}, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.Login(rec, newRequest(t, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"email"`)
	assert.Contains(t, rec.Body.String(), `"field":"password"`)
}

func TestForgotPassword(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockCredentialService{
			ResetPasswordFunc: func(ctx context.Context, email, answer, newPassword string) error {
				assert.Equal(t, "blue", answer)
				assert.Equal(t, "newpass1", newPassword)
				return nil
			},
		}
		ctrl := NewAuthController(svc, zap.NewNop())

		rec := httptest.NewRecorder()
		ctrl.ForgotPassword(rec, newRequest(t, http.MethodPost, "/api/v1/auth/forgot-password",
			dto.ForgotPasswordRequest{Email: "a@x.com", Answer: "blue", NewPassword: "newpass1"}))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong answer", func(t *testing.T) {
		svc := &mockCredentialService{
			ResetPasswordFunc: func(ctx context.Context, email, answer, newPassword string) error {
				return apperrors.NewNotFoundError("wrong email or answer")
			},
		}
		ctrl := NewAuthController(svc, zap.NewNop())

		rec := httptest.NewRecorder()
		ctrl.ForgotPassword(rec, newRequest(t, http.MethodPost, "/api/v1/auth/forgot-password",
			dto.ForgotPasswordRequest{Email: "a@x.com", Answer: "red", NewPassword: "newpass1"}))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "wrong email or answer")
	})

	t.Run("missing new password", func(t *testing.T) {
		ctrl := NewAuthController(&mockCredentialService{}, zap.NewNop())

		rec := httptest.NewRecorder()
		ctrl.ForgotPassword(rec, newRequest(t, http.MethodPost, "/api/v1/auth/forgot-password",
			dto.ForgotPasswordRequest{Email: "a@x.com", Answer: "blue"}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"field":"newPassword"`)
	})
}

func TestUpdateProfile(t *testing.T) {
	claims := &token.Claims{Role: domain.RoleBuyer}
	claims.Subject = "u-1"

	t.Run("uses caller identity", func(t *testing.T) {
		svc := &mockCredentialService{
			UpdateProfileFunc: func(ctx context.Context, userID string, in service.ProfileInput) (*domain.User, error) {
				assert.Equal(t, "u-1", userID)
				require.NotNil(t, in.Name)
				assert.Nil(t, in.Password)
				return &domain.User{ID: userID, Name: *in.Name}, nil
			},
		}
		ctrl := NewAuthController(svc, zap.NewNop())

		name := "Ana Maria"
		req := newRequest(t, http.MethodPut, "/api/v1/auth/profile", dto.UpdateProfileRequest{Name: &name})
		req = req.WithContext(gate.WithClaims(req.Context(), claims))

		rec := httptest.NewRecorder()
		ctrl.UpdateProfile(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Ana Maria")
	})

	t.Run("short password rejected", func(t *testing.T) {
		ctrl := NewAuthController(&mockCredentialService{}, zap.NewNop())

		pw := "123"
		req := newRequest(t, http.MethodPut, "/api/v1/auth/profile", dto.UpdateProfileRequest{Password: &pw})
		req = req.WithContext(gate.WithClaims(req.Context(), claims))

		rec := httptest.NewRecorder()
		ctrl.UpdateProfile(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("without claims", func(t *testing.T) {
		ctrl := NewAuthController(&mockCredentialService{}, zap.NewNop())

		rec := httptest.NewRecorder()
		ctrl.UpdateProfile(rec, newRequest(t, http.MethodPut, "/api/v1/auth/profile", dto.UpdateProfileRequest{}))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthChecks(t *testing.T) {
	ctrl := NewAuthController(&mockCredentialService{}, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.UserAuth(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/user-auth", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	ctrl.AdminAuth(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/admin-auth", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
