package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a product record is not found.
var ErrNotFound = errors.New("product not found")

// Repository provides CRUD operations on the products table.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

const selectColumns = `id, name, description, image_url, current_status, features,
		       git_repo_url, vercel_url, product_url, vercel_project_id, vercel_team_id,
		       vercel_deployment_status, vercel_last_deployment, is_starred,
		       created_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new product and fills in its generated id and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, p *Product) error {
	if p.Features == nil {
		p.Features = []string{}
	}

	query := `
		INSERT INTO products (name, description, image_url, current_status, features,
		                      git_repo_url, vercel_url, product_url, vercel_project_id,
		                      vercel_team_id, vercel_deployment_status, vercel_last_deployment,
		                      is_starred)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		p.Name,
		p.Description,
		p.ImageURL,
		p.CurrentStatus,
		p.Features,
		p.GitRepoURL,
		p.VercelURL,
		p.ProductURL,
		p.VercelProjectID,
		p.VercelTeamID,
		p.VercelDeploymentStatus.NullString(),
		p.VercelLastDeployment,
		p.IsStarred,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}

	return nil
}

// GetByID retrieves a single product by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `SELECT ` + selectColumns + `
		FROM products
		WHERE id = $1`

	return r.scanOne(ctx, query, id)
}

// List retrieves products, starred first and newest first within each group.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	var conditions []string
	if filter.StarredOnly {
		conditions = append(conditions, "is_starred")
	}
	if filter.LinkedOnly {
		conditions = append(conditions, "vercel_project_id <> ''")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s
		FROM products
		%s
		ORDER BY is_starred DESC, created_at DESC`, selectColumns, whereClause)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	if products == nil {
		products = []Product{}
	}

	return products, nil
}

// Update applies the set fields of a partial update and returns the merged row.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Product, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	set := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if fields.Name != nil {
		set("name", *fields.Name)
	}
	if fields.Description != nil {
		set("description", *fields.Description)
	}
	if fields.ImageURL != nil {
		set("image_url", *fields.ImageURL)
	}
	if fields.CurrentStatus != nil {
		set("current_status", *fields.CurrentStatus)
	}
	if fields.Features != nil {
		features := *fields.Features
		if features == nil {
			features = []string{}
		}
		set("features", features)
	}
	if fields.GitRepoURL != nil {
		set("git_repo_url", *fields.GitRepoURL)
	}
	if fields.VercelURL != nil {
		set("vercel_url", *fields.VercelURL)
	}
	if fields.ProductURL != nil {
		set("product_url", *fields.ProductURL)
	}
	if fields.VercelProjectID != nil {
		set("vercel_project_id", *fields.VercelProjectID)
	}
	if fields.VercelTeamID != nil {
		set("vercel_team_id", *fields.VercelTeamID)
	}
	if fields.VercelDeploymentStatus != nil {
		set("vercel_deployment_status", fields.VercelDeploymentStatus.NullString())
	}
	if fields.VercelLastDeployment != nil {
		set("vercel_last_deployment", *fields.VercelLastDeployment)
	}
	if fields.IsStarred != nil {
		set("is_starred", *fields.IsStarred)
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE products
		SET %s
		WHERE id = $%d
		RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, selectColumns)

	return r.scanOne(ctx, query, args...)
}

// Delete removes a product by its UUID.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// scanOne scans a single Product row from a query. Returns ErrNotFound if no rows.
func (r *PostgresRepository) scanOne(ctx context.Context, query string, args ...any) (*Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning product row: %w", err)
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var p Product
	var status *string
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.ImageURL, &p.CurrentStatus, &p.Features,
		&p.GitRepoURL, &p.VercelURL, &p.ProductURL, &p.VercelProjectID, &p.VercelTeamID,
		&status, &p.VercelLastDeployment, &p.IsStarred,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if status != nil {
		p.VercelDeploymentStatus = ParseDeploymentStatus(*status)
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	return &p, nil
}
