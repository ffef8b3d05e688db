package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo persists projects in PostgreSQL. Image variants live in bytea
// columns next to the metadata so a delete removes everything in one row.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const projectColumns = `id, title, description, tags, category, featured, github, live,
image_original_size, image_optimized, image_content_type, image_optimized_size, image_thumbnail,
created_at, updated_at`

func (r *Repo) Insert(ctx context.Context, p *Project) error {
	const q = `
insert into projects (id, title, description, tags, category, featured, github, live,
 image_original_size, image_optimized, image_content_type, image_optimized_size, image_thumbnail,
 created_at, updated_at)
values ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
`
	args := append([]any{p.ID, p.Title, p.Description, p.Tags, string(p.Category), p.Featured, p.GitHub, p.Live}, imageArgs(p.Image)...)
	args = append(args, p.CreatedAt, p.UpdatedAt)

	if _, err := r.db.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Project, error) {
	q := `select ` + projectColumns + ` from projects where id = $1::uuid;`

	p, err := scanProject(r.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (r *Repo) Update(ctx context.Context, p *Project) error {
	const q = `
update projects
set title = $2, description = $3, tags = $4, category = $5, featured = $6, github = $7, live = $8,
    image_original_size = $9, image_optimized = $10, image_content_type = $11,
    image_optimized_size = $12, image_thumbnail = $13, updated_at = $14
where id = $1::uuid;
`
	args := append([]any{p.ID, p.Title, p.Description, p.Tags, string(p.Category), p.Featured, p.GitHub, p.Live}, imageArgs(p.Image)...)
	args = append(args, p.UpdatedAt)

	ct, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) (*Project, error) {
	q := `delete from projects where id = $1::uuid returning ` + projectColumns + `;`

	p, err := scanProject(r.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete project: %w", err)
	}
	return p, nil
}

func (r *Repo) List(ctx context.Context, f ListFilter, page, limit int) ([]Project, int, error) {
	where, args := listPredicates(f)

	countQuery := `select count(*) from projects` + where
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	pageQuery := fmt.Sprintf(
		`select `+projectColumns+` from projects%s order by created_at desc, id asc limit $%d offset $%d;`,
		where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.Query(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]Project, 0, limit)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func listPredicates(f ListFilter) (string, []any) {
	var (
		preds []string
		args  []any
	)

	if f.Featured != nil {
		args = append(args, *f.Featured)
		preds = append(preds, fmt.Sprintf("featured = $%d", len(args)))
	}
	if f.Category != nil {
		args = append(args, string(*f.Category))
		preds = append(preds, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		preds = append(preds, fmt.Sprintf(
			"(title ilike $%d or description ilike $%d or exists (select 1 from unnest(tags) tag where tag ilike $%d))",
			n, n, n,
		))
	}

	if len(preds) == 0 {
		return "", nil
	}
	return " where " + strings.Join(preds, " and "), args
}

func imageArgs(img *Image) []any {
	if img == nil {
		return []any{nil, nil, nil, nil, nil}
	}
	return []any{img.OriginalSize, img.Optimized, img.OptimizedContentType, img.OptimizedSize, img.Thumbnail}
}

func scanProject(row pgx.Row) (*Project, error) {
	var (
		p             Project
		category      string
		originalSize  *int
		optimized     []byte
		contentType   *string
		optimizedSize *int
		thumbnail     []byte
	)

	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Tags, &category, &p.Featured, &p.GitHub, &p.Live,
		&originalSize, &optimized, &contentType, &optimizedSize, &thumbnail,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Category = Category(category)
	if len(optimized) > 0 && len(thumbnail) > 0 {
		img := &Image{Optimized: optimized, Thumbnail: thumbnail}
		if originalSize != nil {
			img.OriginalSize = *originalSize
		}
		if optimizedSize != nil {
			img.OptimizedSize = *optimizedSize
		}
		if contentType != nil {
			img.OptimizedContentType = *contentType
		}
		p.Image = img
	}
	return &p, nil
}
