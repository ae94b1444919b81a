package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/auth/gate"
	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/server/response"
	"storefront/internal/user/service"
)

const (
	// Profile changes require a longer password than registration did.
	minProfilePasswordLength = 6

	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72
)

type CredentialService interface {
	Register(ctx context.Context, in service.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	ResetPassword(ctx context.Context, email, answer, newPassword string) error
	UpdateProfile(ctx context.Context, userID string, in service.ProfileInput) (*domain.User, error)
}

type AuthController struct {
	service CredentialService
	logger  *zap.Logger
}

func NewAuthController(service CredentialService, logger *zap.Logger) *AuthController {
	return &AuthController{
		service: service,
		logger:  logger,
	}
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r)
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.RegisterRequest
	if !c.decode(w, r, traceID, logger, &req) {
		return
	}

	if err := validateRegisterRequest(req); err != nil {
		response.WriteError(w, logger, traceID, err)
		return
	}

	user, err := c.service.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
		Phone:    req.Phone,
		Answer:   req.Answer,
	})
	if err != nil {
		response.WriteError(w, logger, traceID, err)
		return
	}

	response.WriteJSON(w, c.logger, http.StatusCreated, dto.AuthResponse{
		Success: true,
		Message: "user registered successfully",
		User:    toUserDTO(user),
	})
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r)
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.LoginRequest
	if !c.decode(w, r, traceID, logger, &req) {
		return
	}

	var details []apperrors.ValidationDetail
	if strings.TrimSpace(req.Email) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "email", Message: "email is required"})
	}
	if req.Password == "" {
		details = append(details, apperrors.ValidationDetail{Field: "password", Message: "password is required"})
	}
	if len(details) > 0 {
		response.WriteError(w, logger, traceID, apperrors.NewValidationError("validation failed", details...))
		return
	}

	result, err := c.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.WriteError(w, logger, traceID, err)
		return
	}

	response.WriteJSON(w, c.logger, http.StatusOK, dto.AuthResponse{
		Success: true,
		Message: "login successful",
		User:    toUserDTO(result.User),
		Token:   result.Token,
	})
}

func (c *AuthController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r)
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.ForgotPasswordRequest
	if !c.decode(w, r, traceID, logger, &req) {
		return
	}

	var details []apperrors.ValidationDetail
	if strings.TrimSpace(req.Email) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "email", Message: "email is required"})
	}
	if strings.TrimSpace(req.Answer) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "answer", Message: "answer is required"})
	}
	details = append(details, validatePassword("newPassword", req.NewPassword, 1)...)
	if len(details) > 0 {
		response.WriteError(w, logger, traceID, apperrors.NewValidationError("validation failed", details...))
		return
	}

	if err := c.service.ResetPassword(r.Context(), req.Email, req.Answer, req.NewPassword); err != nil {
		response.WriteError(w, logger, traceID, err)
		return
	}

	response.WriteJSON(w, c.logger, http.StatusOK, dto.AuthResponse{
		Success: true,
		Message: "password reset successfully",
	})
}

// UserAuth answers ok for any authenticated caller; the gate does the work.
func (c *AuthController) UserAuth(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, c.logger, http.StatusOK, dto.OKResponse{OK: true})
}

// AdminAuth answers ok once the admin gate has passed.
func (c *AuthController) AdminAuth(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, c.logger, http.StatusOK, dto.OKResponse{OK: true})
}

func (c *AuthController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r)
	logger := c.logger.With(zap.String("traceId", traceID))

	claims, ok := gate.ClaimsFromContext(r.Context())
	if !ok {
		response.WriteError(w, logger, traceID, apperrors.NewUnauthenticatedError("authentication required", nil))
		return
	}

	var req dto.UpdateProfileRequest
	if !c.decode(w, r, traceID, logger, &req) {
		return
	}

	var details []apperrors.ValidationDetail
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name must not be empty"})
	}
	if req.Password != nil {
		details = append(details, validatePassword("password", *req.Password, minProfilePasswordLength)...)
	}
	if len(details) > 0 {
		response.WriteError(w, logger, traceID, apperrors.NewValidationError("validation failed", details...))
		return
	}

	user, err := c.service.UpdateProfile(r.Context(), claims.UserID(), service.ProfileInput{
		Name:     req.Name,
		Password: req.Password,
		Address:  req.Address,
		Phone:    req.Phone,
	})
	if err != nil {
		response.WriteError(w, logger, traceID, err)
		return
	}

	response.WriteJSON(w, c.logger, http.StatusOK, dto.AuthResponse{
		Success: true,
		Message: "profile updated successfully",
		User:    toUserDTO(user),
	})
}

func validateRegisterRequest(req dto.RegisterRequest) error {
	var details []apperrors.ValidationDetail

	required := []struct {
		field string
		value string
	}{
		{"name", req.Name},
		{"email", req.Email},
		{"phone", req.Phone},
		{"address", req.Address},
		{"answer", req.Answer},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			details = append(details, apperrors.ValidationDetail{Field: f.field, Message: f.field + " is required"})
		}
	}

	if email := strings.TrimSpace(req.Email); email != "" {
		if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			details = append(details, apperrors.ValidationDetail{Field: "email", Message: "email must be a valid address"})
		}
	}

	details = append(details, validatePassword("password", req.Password, 1)...)

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func validatePassword(field, password string, minLength int) []apperrors.ValidationDetail {
	switch {
	case password == "":
		return []apperrors.ValidationDetail{{Field: field, Message: field + " is required"}}
	case len(password) < minLength:
		return []apperrors.ValidationDetail{{Field: field, Message: fmt.Sprintf("%s must be at least %d characters", field, minLength)}}
	case len(password) > maxPasswordLength:
		return []apperrors.ValidationDetail{{Field: field, Message: field + " must be at most 72 bytes"}}
	}
	return nil
}

func toUserDTO(user *domain.User) *dto.UserDTO {
	if user == nil {
		return nil
	}
	return &dto.UserDTO{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Phone:   user.Phone,
		Address: user.Address,
		Role:    string(user.Role),
	}
}

func (c *AuthController) decode(w http.ResponseWriter, r *http.Request, traceID string, logger *zap.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.WriteBadJSON(w, logger, traceID, err)
		return false
	}
	return true
}
