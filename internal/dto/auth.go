package dto

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Answer   string `json:"answer"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email       string `json:"email"`
	Answer      string `json:"answer"`
	NewPassword string `json:"newPassword"`
}

// UpdateProfileRequest leaves a field unchanged when it is omitted.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
}

type UserDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Role    string `json:"role"`
}

type AuthResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	User    *UserDTO `json:"user,omitempty"`
	Token   string   `json:"token,omitempty"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
