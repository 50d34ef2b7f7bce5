package db

import (
	"context"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const adminsTable = "admins"

// AdminRepo reads the administrator allow-list.
type AdminRepo struct {
	client *Client
}

func NewAdminRepo(client *Client) *AdminRepo {
	return &AdminRepo{client: client}
}

// IsAdmin reports whether email is on the allow-list, ignoring case.
func (r *AdminRepo) IsAdmin(ctx context.Context, email string) (bool, error) {
	rows, err := r.client.query(ctx, r.client.builder().
		Select("id").
		From(entsql.Table(adminsTable)).
		Where(entsql.EqualFold("email", email)).
		Limit(1))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	found := rows.Next()

	return found, rows.Err()
}

// Seed adds the emails to the allow-list, lower-cased. Existing entries are kept.
func (r *AdminRepo) Seed(ctx context.Context, emails []string) (int, error) {
	added := 0

	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}

		exists, err := r.IsAdmin(ctx, email)
		if err != nil {
			return added, err
		}

		if exists {
			continue
		}

		_, err = r.client.exec(ctx, r.client.builder().Insert(adminsTable).
			Columns("email", "created_at").
			Values(email, time.Now().UTC()))
		if err != nil {
			return added, err
		}

		added++
	}

	return added, nil
}
