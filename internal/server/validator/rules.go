package validator

import (
	"errors"
	"regexp"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
)

const (
	LoginCodeMinLength = 10
	LoginCodeMaxLength = 20
	PasswordMinLength  = 10
	EmailMaxLength     = 255
)

var (
	loginCodePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

	// Local part without leading, trailing or doubled dots; domain labels
	// must start and end with an alphanumeric; alphabetic TLD.
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9_%+-]+(?:\.[A-Za-z0-9_%+-]+)*@(?:[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?\.)+[A-Za-z]{2,}$`)
)

const (
	msgLoginCodeRequired = "login code is required"
	msgLoginCodePattern  = "login code may contain only upper and lower case letters and digits"
	msgLoginCodeSize     = "login code must be between 10 and 20 characters"
	msgPasswordRequired  = "password is required"
	msgPasswordPattern   = "password must contain at least one upper case letter, one lower case letter, one digit and one special character"
	msgPasswordSize      = "password must be at least 10 characters"
	msgEmailRequired     = "email is required"
	msgEmailPattern      = "email format is invalid"
	msgEmailSize         = "email must not exceed 255 characters"
	msgTitleRequired     = "title is required"
	msgContentRequired   = "content is required"
	msgCommentRequired   = "comment content is required"
)

// strongPassword requires one upper case letter, one lower case letter, one
// digit and one special character. Empty values are left to NotBlank.
func strongPassword(message string) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		var upper, lower, digit, special bool
		for _, r := range s {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			case unicode.IsPunct(r) || unicode.IsSymbol(r):
				special = true
			}
		}
		if upper && lower && digit && special {
			return nil
		}
		return errors.New(message)
	})
}

func loginCodeField(v string) field {
	return field{name: "loginCode", value: v, stages: []stage{
		on(GroupNotBlank, notBlank(msgLoginCodeRequired)),
		on(GroupPattern, validation.Match(loginCodePattern).Error(msgLoginCodePattern)),
		on(GroupSize, validation.RuneLength(LoginCodeMinLength, LoginCodeMaxLength).Error(msgLoginCodeSize)),
	}}
}

func passwordField(name, v string, required bool) field {
	f := field{name: name, value: v, stages: []stage{
		on(GroupPattern, strongPassword(msgPasswordPattern)),
		on(GroupSize, validation.RuneLength(PasswordMinLength, 0).Error(msgPasswordSize)),
	}}
	if required {
		f.stages = append([]stage{on(GroupNotBlank, notBlank(msgPasswordRequired))}, f.stages...)
	}
	return f
}

func emailField(v string, required bool) field {
	f := field{name: "email", value: v, stages: []stage{
		on(GroupPattern, validation.Match(emailPattern).Error(msgEmailPattern)),
		on(GroupSize, validation.RuneLength(0, EmailMaxLength).Error(msgEmailSize)),
	}}
	if required {
		f.stages = append([]stage{on(GroupNotBlank, notBlank(msgEmailRequired))}, f.stages...)
	}
	return f
}

// Signup validates a registration payload. Without groups the full
// Sequence runs; passing groups restricts evaluation to them.
func Signup(r models.SignupRequest, groups ...Group) Violations {
	return check([]field{
		loginCodeField(r.LoginCode),
		passwordField("password", r.Password, true),
		emailField(r.Email, true),
	}, groups)
}

// UpdateProfile validates a profile update. Email and NewPassword are
// optional but, when present, must satisfy the same rules as at signup.
func UpdateProfile(r models.UpdateProfileRequest, groups ...Group) Violations {
	return check([]field{
		emailField(r.Email, false),
		{name: "currentPassword", value: r.CurrentPassword, stages: []stage{
			on(GroupNotBlank, notBlank(msgPasswordRequired)),
		}},
		passwordField("newPassword", r.NewPassword, false),
	}, groups)
}

func Post(r models.PostRequest, groups ...Group) Violations {
	return check([]field{
		{name: "title", value: r.Title, stages: []stage{on(GroupNotBlank, notBlank(msgTitleRequired))}},
		{name: "content", value: r.Content, stages: []stage{on(GroupNotBlank, notBlank(msgContentRequired))}},
	}, groups)
}

func Comment(r models.CommentRequest, groups ...Group) Violations {
	return check([]field{
		{name: "content", value: r.Content, stages: []stage{on(GroupNotBlank, notBlank(msgCommentRequired))}},
	}, groups)
}
