package account

import (
	"errors"
	"time"

	"github.com/frahmantamala/shopfront/internal"
	accountDatamodel "github.com/frahmantamala/shopfront/internal/core/datamodel/account"
	"github.com/frahmantamala/shopfront/internal/core/role"
)

type Account struct {
	ID         int64
	Username   string
	Email      string
	FirstName  string
	LastName   string
	Role       role.Role
	GoogleSub  *string
	Picture    *string
	IsStaff    bool
	IsActive   bool
	DateJoined time.Time
	UpdatedAt  time.Time
}

func (a *Account) IsAdmin() bool {
	return a.Role == role.Admin
}

// Principal is the request-scoped identity derived from the account.
func (a *Account) Principal() *internal.User {
	return &internal.User{ID: a.ID, Email: a.Email, Role: a.Role}
}

// IdentityProfile holds the verified attributes of an external identity assertion.
type IdentityProfile struct {
	Subject    string
	Email      string
	GivenName  string
	FamilyName string
	Picture    string
}

// RoleResolver decides the role an account holds after a sign-in, given its current role.
type RoleResolver func(email string, existing role.Role) role.Role

var (
	ErrNotFound = errors.New("account not found")
	ErrConflict = errors.New("account changed concurrently")
)

func ToDataModel(a *Account) *accountDatamodel.Account {
	return &accountDatamodel.Account{
		ID:         a.ID,
		Username:   a.Username,
		Email:      a.Email,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Role:       a.Role,
		GoogleSub:  a.GoogleSub,
		Picture:    a.Picture,
		IsStaff:    a.IsStaff,
		IsActive:   a.IsActive,
		DateJoined: a.DateJoined,
		UpdatedAt:  a.UpdatedAt,
	}
}

func FromDataModel(a *accountDatamodel.Account) *Account {
	return &Account{
		ID:         a.ID,
		Username:   a.Username,
		Email:      a.Email,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Role:       a.Role,
		GoogleSub:  a.GoogleSub,
		Picture:    a.Picture,
		IsStaff:    a.IsStaff,
		IsActive:   a.IsActive,
		DateJoined: a.DateJoined,
		UpdatedAt:  a.UpdatedAt,
	}
}
