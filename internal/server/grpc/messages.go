package grpc

import "time"

type Empty struct{}

type SignupRequest struct {
	LoginCode    string `json:"login_code"`
	Password     string `json:"password"`
	Email        string `json:"email"`
	Name         string `json:"name,omitempty"`
	Introduction string `json:"introduction,omitempty"`
}

type ConfirmEmailRequest struct {
	AccountID string `json:"account_id"`
	Code      string `json:"code"`
}

type AuthenticateRequest struct {
	LoginCode string `json:"login_code"`
	Password  string `json:"password"`
}

type AuthenticateResponse struct {
	AccessToken string            `json:"access_token"`
	ExpiresAt   time.Time         `json:"expires_at"`
	Principal   PrincipalResponse `json:"principal"`
}

type VerifyTokenRequest struct {
	Token string `json:"token"`
}

type PrincipalResponse struct {
	AccountID string `json:"account_id"`
	LoginCode string `json:"login_code"`
	Role      string `json:"role"`
	Status    string `json:"status"`
}

type GetProfileRequest struct {
	AccountID string `json:"account_id"`
}

type UpdateProfileRequest struct {
	AccountID       string `json:"account_id"`
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
	Introduction    string `json:"introduction,omitempty"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password,omitempty"`
}

type ResignRequest struct {
	AccountID string `json:"account_id"`
	Password  string `json:"password"`
}

type AccountResponse struct {
	ID              string    `json:"id"`
	LoginCode       string    `json:"login_code"`
	Name            string    `json:"name,omitempty"`
	Email           string    `json:"email"`
	Introduction    string    `json:"introduction,omitempty"`
	Status          string    `json:"status"`
	Role            string    `json:"role"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	StatusChangedAt time.Time `json:"status_changed_at"`
}

// Media payloads carry the file bytes inline (base64 in JSON).
type AttachProfileImageRequest struct {
	AccountID   string `json:"account_id"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type AttachProfileImageResponse struct {
	URL string `json:"url"`
}

type AttachPostMediaRequest struct {
	PostID      string `json:"post_id"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type PostMediaResponse struct {
	ID          int64     `json:"id"`
	PostID      string    `json:"post_id"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

type AuthorizePostRequest struct {
	PostID string `json:"post_id"`
}
