package http

import (
	"regexp"
	"strings"
)

const requiredReason = "required"

var (
	reUsername = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	reEmail    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// validateRegister checks the registration fields. Returns a map of field
// names to error messages, or nil if all fields are valid.
func validateRegister(username, email, password string) map[string]string {
	errs := make(map[string]string)

	validateUsername(errs, username)
	validateEmail(errs, email)
	validatePassword(errs, password)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateUsername(errs map[string]string, username string) {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		errs["username"] = requiredReason
	case len(username) < 3 || len(username) > 50:
		errs["username"] = "must be 3-50 characters"
	case !reUsername.MatchString(username):
		errs["username"] = "must only contain a-z, A-Z, 0-9 or _"
	}
}

func validateEmail(errs map[string]string, email string) {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs["email"] = requiredReason
	case len(email) > 254 || !reEmail.MatchString(email):
		errs["email"] = "must be a valid email address"
	}
}

func validatePassword(errs map[string]string, password string) {
	switch {
	case password == "":
		errs["password"] = requiredReason
	case len(password) < 8:
		errs["password"] = "too short (min 8)"
	case len(password) > 128:
		errs["password"] = "too long (max 128)"
	}
}
