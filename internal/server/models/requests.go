package models

// SignupRequest is the registration payload.
type SignupRequest struct {
	LoginCode    string
	Password     string
	Email        string
	Name         string
	Introduction string
}

// UpdateProfileRequest changes self-service profile fields. Empty Name,
// Email and Introduction keep the stored values; NewPassword is optional.
// CurrentPassword is always required and re-verified.
type UpdateProfileRequest struct {
	Name            string
	Email           string
	Introduction    string
	CurrentPassword string
	NewPassword     string
}

// PostRequest is the post content payload validated on behalf of the feed layer.
type PostRequest struct {
	Title   string
	Content string
}

// CommentRequest is the comment content payload.
type CommentRequest struct {
	Content string
}
