package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/productscout/backend/internal/domain"
)

// Repository persists searches and their scored results in Postgres.
// It implements domain.SearchHistoryRepository.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a repository over an existing connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Connect opens a pgx pool and verifies the connection.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// InitSchema creates the history tables if they do not exist yet.
func (r *Repository) InitSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS searches (
			id         UUID PRIMARY KEY,
			query      TEXT NOT NULL,
			filters    JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS search_results (
			id               UUID PRIMARY KEY,
			search_id        UUID NOT NULL REFERENCES searches (id) ON DELETE CASCADE,
			marketplace      TEXT NOT NULL,
			external_id      TEXT NOT NULL,
			title            TEXT NOT NULL,
			image_url        TEXT,
			price            DOUBLE PRECISION NOT NULL,
			rating           DOUBLE PRECISION,
			reviews          INTEGER,
			category_path    JSONB,
			best_seller_rank INTEGER,
			sellers_count    INTEGER,
			scores           JSONB NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_search_results_search_id
			ON search_results (search_id);
	`)
	if err != nil {
		return fmt.Errorf("create history schema: %w", err)
	}
	return nil
}

// storedFilters is the jsonb shape persisted alongside a search: the user
// filters plus the marketplace selection the search ran against.
type storedFilters struct {
	Marketplaces []domain.Marketplace `json:"marketplaces"`
	domain.SearchFilters
}

// resultScores is the jsonb shape for the derived signals of one result.
type resultScores struct {
	DemandScore      float64 `json:"demandScore"`
	CompetitionScore float64 `json:"competitionScore"`
	ProfitEstimate   float64 `json:"profitEstimate"`
	ProfitMarginPct  float64 `json:"profitMarginPct"`
	OpportunityScore float64 `json:"opportunityScore"`
}

// SaveSearch records one executed search together with its ranked results.
func (r *Repository) SaveSearch(
	ctx context.Context,
	query string,
	marketplaces []domain.Marketplace,
	filters domain.SearchFilters,
	results []domain.ScoredProduct,
) error {
	filtersJSON, err := json.Marshal(storedFilters{
		Marketplaces:  marketplaces,
		SearchFilters: filters,
	})
	if err != nil {
		return fmt.Errorf("marshal filters: %w", err)
	}

	searchID := uuid.New()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO searches (id, query, filters) VALUES ($1, $2, $3)`,
		searchID, query, filtersJSON,
	)
	if err != nil {
		return fmt.Errorf("insert search: %w", err)
	}

	if len(results) > 0 {
		batch := &pgx.Batch{}
		for _, result := range results {
			scoresJSON, err := json.Marshal(resultScores{
				DemandScore:      result.DemandScore,
				CompetitionScore: result.CompetitionScore,
				ProfitEstimate:   result.ProfitEstimate,
				ProfitMarginPct:  result.ProfitMarginPct,
				OpportunityScore: result.OpportunityScore,
			})
			if err != nil {
				return fmt.Errorf("marshal scores: %w", err)
			}

			var categoryJSON []byte
			if len(result.CategoryPath) > 0 {
				categoryJSON, err = json.Marshal(result.CategoryPath)
				if err != nil {
					return fmt.Errorf("marshal category path: %w", err)
				}
			}

			batch.Queue(`
				INSERT INTO search_results (
					id, search_id, marketplace, external_id, title, image_url,
					price, rating, reviews, category_path, best_seller_rank,
					sellers_count, scores
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
				uuid.New(), searchID, string(result.Marketplace), result.ID,
				result.Title, result.ImageURL, result.Price, result.Rating,
				result.Reviews, categoryJSON, result.BestSellerRank,
				result.SellersCount, scoresJSON,
			)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert results: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// RecentSearches returns the most recent searches, newest first.
func (r *Repository) RecentSearches(ctx context.Context, limit int) ([]domain.SavedSearch, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, query, filters, created_at
		FROM searches
		ORDER BY created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query searches: %w", err)
	}
	defer rows.Close()

	searches := make([]domain.SavedSearch, 0, limit)
	for rows.Next() {
		var (
			id          uuid.UUID
			saved       domain.SavedSearch
			filtersJSON []byte
		)
		if err := rows.Scan(&id, &saved.Query, &filtersJSON, &saved.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan search: %w", err)
		}
		saved.ID = id.String()

		var stored storedFilters
		if err := json.Unmarshal(filtersJSON, &stored); err != nil {
			return nil, fmt.Errorf("unmarshal filters: %w", err)
		}
		saved.Filters = stored.SearchFilters
		saved.Marketplaces = stored.Marketplaces

		searches = append(searches, saved)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate searches: %w", err)
	}

	return searches, nil
}
