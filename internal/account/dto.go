package account

import (
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/frahmantamala/shopfront/internal/core/role"
)

// AccountResponse is the public projection of an account. The Google subject is never exposed.
type AccountResponse struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Role       role.Role `json:"role"`
	Picture    *string   `json:"picture"`
	IsStaff    bool      `json:"is_staff"`
	IsActive   bool      `json:"is_active"`
	DateJoined time.Time `json:"date_joined"`
}

func (a *Account) ToResponse() AccountResponse {
	return AccountResponse{
		ID:         a.ID,
		Username:   a.Username,
		Email:      a.Email,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Role:       a.Role,
		Picture:    a.Picture,
		IsStaff:    a.IsStaff,
		IsActive:   a.IsActive,
		DateJoined: a.DateJoined,
	}
}

type AccountPage struct {
	Count    int64             `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []AccountResponse `json:"results"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*page_size within int.
	MaxPage = math.MaxInt / MaxPageSize
)

type ListQuery struct {
	Page     int
	PageSize int
}

// ParseListQuery reads ?page and ?page_size, clamping them to sane bounds.
func ParseListQuery(values url.Values) ListQuery {
	q := ListQuery{Page: 1, PageSize: DefaultPageSize}
	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		q.Page = min(page, MaxPage)
	}
	if size, err := strconv.Atoi(values.Get("page_size")); err == nil && size > 0 {
		q.PageSize = min(size, MaxPageSize)
	}
	return q
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// pageLink builds a link to another page, keeping the rest of the request URL intact.
func pageLink(base *url.URL, page, pageSize int) *string {
	u := *base
	values := u.Query()
	values.Set("page", strconv.Itoa(page))
	values.Set("page_size", strconv.Itoa(pageSize))
	u.RawQuery = values.Encode()
	link := u.String()
	return &link
}
