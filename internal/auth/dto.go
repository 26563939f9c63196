package auth

import "strings"

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// personalDomains are consumer e-mail providers that are never accepted,
// whatever the configured corporate domain list says.
var personalDomains = []string{
	"gmail.com",
	"hotmail.com",
	"yahoo.com",
	"outlook.com",
	"live.com",
}

// EmailDomain returns the lowercased domain part of an e-mail address,
// or "" when the address has no domain.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

// IsCorporateEmail rejects addresses on known personal providers. The check
// runs before any credential lookup.
func IsCorporateEmail(email string) bool {
	domain := EmailDomain(email)
	if domain == "" {
		return false
	}
	for _, d := range personalDomains {
		if domain == d {
			return false
		}
	}
	return true
}

// Validate checks required fields and returns a ValidationError on failure.
func (d LoginDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if EmailDomain(d.Email) == "" {
		return ValidationError{Msg: "invalid email address"}
	}
	if !IsCorporateEmail(d.Email) {
		return ValidationError{Msg: "use a corporate email address"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	if len(d.Password) < 6 {
		return ValidationError{Msg: "password must be at least 6 characters"}
	}
	return nil
}

// Validate for refresh token DTO
func (d RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return ValidationError{Msg: "refresh_token is required"}
	}
	return nil
}
