package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"ArticleEnricher/internal/domain"
	"ArticleEnricher/internal/ports"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	articlesTable = "articles"
)

var articleColumns = []string{
	"id", "url", "title", "content", "is_updated",
	"updated_content", "citations", "created_at", "updated_at",
}

const returningColumns = "RETURNING id, url, title, content, is_updated, updated_content, citations, created_at, updated_at"

const upsertConflict = "ON CONFLICT (url) DO UPDATE SET title = EXCLUDED.title, content = EXCLUDED.content, updated_at = EXCLUDED.updated_at " + returningColumns

var schemas = map[string]string{
	DriverPostgres: `CREATE TABLE IF NOT EXISTS articles (
		id BIGSERIAL PRIMARY KEY,
		url TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		is_updated BOOLEAN NOT NULL DEFAULT FALSE,
		updated_content TEXT,
		citations TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	DriverSQLite: `CREATE TABLE IF NOT EXISTS articles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		is_updated BOOLEAN NOT NULL DEFAULT FALSE,
		updated_content TEXT,
		citations TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
}

// SQLRepository persists articles into Postgres or SQLite.
type SQLRepository struct {
	db      *sql.DB
	driver  string
	builder sq.StatementBuilderType
	now     func() time.Time
}

var _ ports.ArticleRepository = (*SQLRepository)(nil)

// NewSQLRepository wires a sql.DB opened with the given driver name.
func NewSQLRepository(db *sql.DB, driver string) *SQLRepository {
	var placeholder sq.PlaceholderFormat = sq.Question
	if driver == DriverPostgres {
		placeholder = sq.Dollar
	}
	return &SQLRepository{
		db:      db,
		driver:  driver,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
		now:     time.Now,
	}
}

// Open connects, pings and migrates the database.
func Open(ctx context.Context, driver, dsn string) (*SQLRepository, error) {
	if _, ok := schemas[driver]; !ok {
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := NewSQLRepository(db, driver)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Migrate creates the articles table if it does not exist.
func (r *SQLRepository) Migrate(ctx context.Context) error {
	schema, ok := schemas[r.driver]
	if !ok {
		return fmt.Errorf("unsupported storage driver %q", r.driver)
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate articles: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// List returns every article ordered by id.
func (r *SQLRepository) List(ctx context.Context) ([]domain.Article, error) {
	query, args, err := r.builder.Select(articleColumns...).From(articlesTable).OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list", Err: err}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list", Err: err}
	}

	var articles []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			_ = rows.Close()
			return nil, &domain.PersistenceError{Op: "list", Err: err}
		}
		articles = append(articles, article)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, &domain.PersistenceError{Op: "list", Err: fmt.Errorf("rows iteration: %w", rowsErr)}
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, &domain.PersistenceError{Op: "list", Err: fmt.Errorf("close rows: %w", closeErr)}
	}

	return articles, nil
}

// Get loads one article by id.
func (r *SQLRepository) Get(ctx context.Context, id int64) (domain.Article, error) {
	query, args, err := r.builder.Select(articleColumns...).From(articlesTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Article{}, &domain.PersistenceError{Op: "get", Err: err}
	}

	return r.queryOne(ctx, "get", query, args)
}

// UpsertByURL inserts the article or refreshes its title and content.
// Enrichment columns are never touched on conflict.
func (r *SQLRepository) UpsertByURL(ctx context.Context, content domain.ArticleContent) (domain.Article, error) {
	now := r.now().UTC()
	query, args, err := r.builder.Insert(articlesTable).
		Columns("url", "title", "content", "is_updated", "citations", "created_at", "updated_at").
		Values(content.URL, content.Title, content.Content, false, "[]", now, now).
		Suffix(upsertConflict).
		ToSql()
	if err != nil {
		return domain.Article{}, &domain.PersistenceError{Op: "upsert", Err: err}
	}

	return r.queryOne(ctx, "upsert", query, args)
}

// UpdateEnrichment writes is_updated, updated_content and citations in one statement.
func (r *SQLRepository) UpdateEnrichment(ctx context.Context, id int64, enrichment domain.Enrichment) (domain.Article, error) {
	citations := enrichment.Citations
	if citations == nil {
		citations = []string{}
	}
	encoded, err := json.Marshal(citations)
	if err != nil {
		return domain.Article{}, &domain.PersistenceError{Op: "update", Err: fmt.Errorf("encode citations: %w", err)}
	}

	query, args, err := r.builder.Update(articlesTable).
		Set("is_updated", true).
		Set("updated_content", enrichment.UpdatedContent).
		Set("citations", string(encoded)).
		Set("updated_at", r.now().UTC()).
		Where(sq.Eq{"id": id}).
		Suffix(returningColumns).
		ToSql()
	if err != nil {
		return domain.Article{}, &domain.PersistenceError{Op: "update", Err: err}
	}

	return r.queryOne(ctx, "update", query, args)
}

func (r *SQLRepository) queryOne(ctx context.Context, op, query string, args []interface{}) (domain.Article, error) {
	article, err := scanArticle(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Article{}, &domain.PersistenceError{Op: op, Err: domain.ErrArticleNotFound}
	}
	if err != nil {
		return domain.Article{}, &domain.PersistenceError{Op: op, Err: err}
	}
	return article, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var (
		article              domain.Article
		updatedContent       sql.NullString
		citations            string
		createdAt, updatedAt timestamp
	)

	err := row.Scan(
		&article.ID,
		&article.URL,
		&article.Title,
		&article.Content,
		&article.IsUpdated,
		&updatedContent,
		&citations,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Article{}, err
	}
	article.CreatedAt = time.Time(createdAt)
	article.UpdatedAt = time.Time(updatedAt)

	if updatedContent.Valid {
		article.UpdatedContent = &updatedContent.String
	}

	article.Citations = []string{}
	if citations != "" {
		if err := json.Unmarshal([]byte(citations), &article.Citations); err != nil {
			return domain.Article{}, fmt.Errorf("decode citations: %w", err)
		}
	}

	return article, nil
}
