package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/shopfront/internal/core/role"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Ensure allow-listed admin accounts exist",
	Long: `Create an Admin account for every address in identity.admin_emails that has not signed in yet,
and promote existing accounts on the list. The Google subject is attached on their first sign-in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, _, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		admins := role.NewAdminAllowList(cfg.Identity.AdminEmails).Emails()
		if len(admins) == 0 {
			cmd.Println("identity.admin_emails is empty; nothing to seed")
			return nil
		}

		ctx := context.Background()
		for _, email := range admins {
			created, err := seedAdmin(ctx, db, email)
			if err != nil {
				return err
			}
			if created {
				cmd.Println("Seeded admin account:", email)
			} else {
				cmd.Println("Admin account ensured:", email)
			}
		}
		return nil
	},
}

// seedAdmin inserts an active Admin for email or promotes the existing row. Reports whether a row was inserted.
func seedAdmin(ctx context.Context, db *sqlx.DB, email string) (bool, error) {
	var id int64
	err := db.GetContext(ctx, &id, db.Rebind("SELECT id FROM accounts WHERE LOWER(email) = ?"), email)
	switch {
	case err == nil:
		_, err = db.ExecContext(ctx,
			db.Rebind("UPDATE accounts SET role = ?, is_staff = ?, updated_at = ? WHERE id = ?"),
			role.Admin.String(), true, time.Now().UTC(), id)
		if err != nil {
			return false, fmt.Errorf("failed to promote %s: %w", email, err)
		}
		return false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("failed to look up %s: %w", email, err)
	}

	now := time.Now().UTC()
	username := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		username = email[:at]
	}
	_, err = db.ExecContext(ctx,
		db.Rebind(`INSERT INTO accounts (username, email, first_name, last_name, role, is_staff, is_active, date_joined, updated_at)
			VALUES (?, ?, '', '', ?, ?, ?, ?, ?)`),
		username, email, role.Admin.String(), true, true, now, now)
	if err != nil {
		return false, fmt.Errorf("failed to insert %s: %w", email, err)
	}
	return true, nil
}
