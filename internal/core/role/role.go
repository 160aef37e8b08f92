package role

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the authorization label carried by every account.
type Role string

const (
	Admin    Role = "Admin"
	Consumer Role = "Consumer"
)

var ErrUnknownRole = errors.New("unknown role")

func Parse(s string) (Role, error) {
	switch r := Role(strings.TrimSpace(s)); r {
	case Admin, Consumer:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) Valid() bool {
	return r == Admin || r == Consumer
}

func (r Role) String() string {
	return string(r)
}

// AdminAllowList holds lower-cased email addresses that are promoted to Admin on sign-in.
type AdminAllowList map[string]struct{}

func NewAdminAllowList(emails []string) AdminAllowList {
	list := make(AdminAllowList, len(emails))
	for _, email := range emails {
		email = normalizeEmail(email)
		if email == "" {
			continue
		}
		list[email] = struct{}{}
	}
	return list
}

func (a AdminAllowList) Contains(email string) bool {
	if len(a) == 0 {
		return false
	}
	_, ok := a[normalizeEmail(email)]
	return ok
}

func (a AdminAllowList) Emails() []string {
	emails := make([]string, 0, len(a))
	for email := range a {
		emails = append(emails, email)
	}
	return emails
}

// Resolve decides the role an account holds after a sign-in.
// An existing Admin is never demoted; otherwise allow-listed emails become Admin.
func Resolve(email string, existing Role, allow AdminAllowList) Role {
	if existing == Admin {
		return Admin
	}
	if email != "" && allow.Contains(email) {
		return Admin
	}
	return Consumer
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
