package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const contactColumns = `id, email, phone, message, status, created_at`

func (r *Repo) Insert(ctx context.Context, contact *Contact) error {
	const q = `
insert into contacts (id, email, phone, message, status, created_at)
values ($1::uuid, $2, $3, $4, $5, $6);
`
	_, err := r.db.Exec(ctx, q, contact.ID, contact.Email, contact.Phone, contact.Message, string(contact.Status), contact.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Contact, error) {
	q := `select ` + contactColumns + ` from contacts where id = $1::uuid;`

	contact, err := scanContact(r.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return contact, nil
}

func (r *Repo) List(ctx context.Context, status *Status, search string) ([]Contact, error) {
	var (
		preds []string
		args  []any
	)

	if status != nil {
		args = append(args, string(*status))
		preds = append(preds, fmt.Sprintf("status = $%d", len(args)))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		preds = append(preds, fmt.Sprintf("(email ilike $%d or message ilike $%d)", n, n))
	}

	q := `select ` + contactColumns + ` from contacts`
	if len(preds) > 0 {
		q += " where " + strings.Join(preds, " and ")
	}
	q += " order by created_at desc, id asc;"

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	out := make([]Contact, 0, 16)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, *contact)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateStatus(ctx context.Context, id string, status Status) (*Contact, error) {
	q := `update contacts set status = $2 where id = $1::uuid returning ` + contactColumns + `;`

	contact, err := scanContact(r.db.QueryRow(ctx, q, id, string(status)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update contact status: %w", err)
	}
	return contact, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (*Contact, error) {
	q := `delete from contacts where id = $1::uuid returning ` + contactColumns + `;`

	contact, err := scanContact(r.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete contact: %w", err)
	}
	return contact, nil
}

// PurgeArchivedBefore removes archived contacts created before the cutoff.
// Used by the nightly retention job.
func (r *Repo) PurgeArchivedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `delete from contacts where status = 'archived' and created_at < $1;`

	ct, err := r.db.Exec(ctx, q, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge archived contacts: %w", err)
	}
	return ct.RowsAffected(), nil
}

func scanContact(row pgx.Row) (*Contact, error) {
	var (
		contact Contact
		status  string
	)
	if err := row.Scan(&contact.ID, &contact.Email, &contact.Phone, &contact.Message, &status, &contact.CreatedAt); err != nil {
		return nil, err
	}
	contact.Status = Status(status)
	return &contact, nil
}
