package index

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/simppl/reddify/internal/model"
)

const pgTable = "reddit_posts"

type pgConfig struct {
	DSN       string `json:"dsn"`
	Dimension int    `json:"dimension"`
}

type pgIndex struct {
	db *sql.DB
}

func init() {
	Register("pgvector", createPGIndex)
}

func createPGIndex(args interface{}) (Index, error) {
	cfg := &pgConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("index.dsn is required for pgvector")
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("index.dimension is required for pgvector")
	}
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	idx := &pgIndex{db: db}
	if err := idx.ensureSchema(cfg.Dimension); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (p *pgIndex) ensureSchema(dimension int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			subreddit TEXT NOT NULL DEFAULT '',
			author TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			created_utc TEXT NOT NULL DEFAULT '',
			embedding vector(%d) NOT NULL
		)`, pgTable, dimension),
	}
	for _, stmt := range stmts {
		if _, err := p.db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (p *pgIndex) Upsert(ctx context.Context, docs []model.Document) error {
	if len(docs) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, map[string]interface{}{
			"id":          doc.ID,
			"title":       doc.Title,
			"body":        doc.Body,
			"subreddit":   doc.Subreddit,
			"author":      doc.Author,
			"url":         doc.URL,
			"created_utc": doc.CreatedUTC,
			"embedding":   pgvector.NewVector(doc.Embedding),
		})
	}
	sqlStr, args, err := builder.BuildInsert(pgTable, rows)
	if err != nil {
		return err
	}
	sqlStr += ` ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		body = EXCLUDED.body,
		subreddit = EXCLUDED.subreddit,
		author = EXCLUDED.author,
		url = EXCLUDED.url,
		created_utc = EXCLUDED.created_utc,
		embedding = EXCLUDED.embedding`
	sqlStr = sqlx.Rebind(sqlx.DOLLAR, sqlStr)
	_, err = p.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (p *pgIndex) Query(ctx context.Context, vector []float32, k int) ([]model.RetrievedDocument, error) {
	if k <= 0 {
		return []model.RetrievedDocument{}, nil
	}
	query := fmt.Sprintf(`
		SELECT id, title, body, subreddit, author, url, created_utc, embedding <=> $1 AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgTable)
	rows, err := p.db.QueryContext(ctx, query, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := make([]model.RetrievedDocument, 0, k)
	for rows.Next() {
		var item model.RetrievedDocument
		if err := rows.Scan(&item.ID, &item.Title, &item.Body, &item.Subreddit, &item.Author, &item.URL, &item.CreatedUTC, &item.Score); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, rows.Err()
}

func (p *pgIndex) Count(ctx context.Context) (int64, error) {
	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, pgTable)
	if err := p.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (p *pgIndex) Close() error {
	return p.db.Close()
}
