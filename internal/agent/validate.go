package agent

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minNameLen     = 2
	minPasswordLen = 6
)

var (
	emailRe  = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
	mobileRe = regexp.MustCompile(`^\+\d{1,4}\d{6,14}$`)
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkName(errs *FieldErrors, name string) {
	switch {
	case name == "":
		errs.add("name", "Name is required")
	case utf8.RuneCountInString(name) < minNameLen:
		errs.add("name", "Name must be at least 2 characters long")
	}
}

func checkEmail(errs *FieldErrors, email string) {
	switch {
	case email == "":
		errs.add("email", "Email is required")
	case !emailRe.MatchString(email):
		errs.add("email", "Please enter a valid email")
	}
}

func checkMobile(errs *FieldErrors, mobile string) {
	switch {
	case mobile == "":
		errs.add("mobile", "Mobile number is required")
	case !mobileRe.MatchString(mobile):
		errs.add("mobile", "Please enter a valid mobile number with country code (e.g., +1234567890)")
	}
}

func checkPassword(errs *FieldErrors, password string) {
	switch {
	case password == "":
		errs.add("password", "Password is required")
	case len(password) < minPasswordLen:
		errs.add("password", "Password must be at least 6 characters long")
	}
}
