package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/frahmantamala/shopfront/internal/account"
	accountDatamodel "github.com/frahmantamala/shopfront/internal/core/datamodel/account"
	"github.com/frahmantamala/shopfront/internal/core/role"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{
		db: db,
	}
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	var a accountDatamodel.Account
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, account.ErrNotFound
		}
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}
	return account.FromDataModel(&a), nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	var a accountDatamodel.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, account.ErrNotFound
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return account.FromDataModel(&a), nil
}

func (r *AccountRepository) List(ctx context.Context, offset, limit int) ([]*account.Account, error) {
	var rows []*accountDatamodel.Account
	err := r.db.WithContext(ctx).
		Order("date_joined DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	accounts := make([]*account.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, account.FromDataModel(row))
	}
	return accounts, nil
}

func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&accountDatamodel.Account{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return total, nil
}

// UpsertFromIdentity finds the account for profile.Email or creates it, copies the profile over
// and applies resolve to its role, all in one transaction. It reports whether the account is new.
// A unique violation from a concurrent first sign-in is retried once; the row exists by then.
func (r *AccountRepository) UpsertFromIdentity(ctx context.Context, profile account.IdentityProfile, resolve account.RoleResolver) (*account.Account, bool, error) {
	a, created, err := r.upsert(ctx, profile, resolve)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		a, created, err = r.upsert(ctx, profile, resolve)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, fmt.Errorf("%w: %v", account.ErrConflict, err)
		}
	}
	if err != nil {
		return nil, false, err
	}
	return a, created, nil
}

func (r *AccountRepository) upsert(ctx context.Context, profile account.IdentityProfile, resolve account.RoleResolver) (*account.Account, bool, error) {
	var (
		row     accountDatamodel.Account
		created bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", profile.Email).First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			row = accountDatamodel.Account{
				Email:    profile.Email,
				Role:     role.Consumer,
				IsActive: true,
			}
		case err != nil:
			return fmt.Errorf("find account by email: %w", err)
		}

		row.Username = profile.Email
		row.FirstName = profile.GivenName
		row.LastName = profile.FamilyName
		row.Picture = optional(profile.Picture)
		row.GoogleSub = optional(profile.Subject)
		row.Role = resolve(profile.Email, row.Role)

		if created {
			return tx.Create(&row).Error
		}
		return tx.Save(&row).Error
	})
	if err != nil {
		return nil, false, err
	}

	return account.FromDataModel(&row), created, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
