package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/carebridge/interpreter-booking/pkg/logging"
)

const statsCacheKey = "dashboard:stats"

// LanguageAvailability is the available interpreter count for one language.
type LanguageAvailability struct {
	Language  string `json:"language"`
	Available int64  `json:"available"`
}

// Stats is the staff dashboard snapshot.
type Stats struct {
	AvailableInterpreters int64                  `json:"available_interpreters"`
	PendingRequests       int64                  `json:"pending_requests"`
	Languages             int64                  `json:"languages"`
	AvailableByLanguage   []LanguageAvailability `json:"available_by_language"`
	GeneratedAt           string                 `json:"generated_at"`
}

// statsDB defines the database interface needed by StatsRepository
type statsDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StatsRepository queries dashboard counts from the database.
type StatsRepository struct {
	db statsDB
}

// NewStatsRepository creates a new stats repository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	if pool == nil {
		panic("dashboard: pgx pool required for stats")
	}
	return &StatsRepository{db: pool}
}

// NewStatsRepositoryWithDB allows injecting a mock database for testing.
func NewStatsRepositoryWithDB(db statsDB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetStats aggregates the live counts. Reads are read-committed; the
// snapshot may lag in-flight transitions by a moment.
func (r *StatsRepository) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{GeneratedAt: time.Now().UTC().Format(time.RFC3339)}

	pendingQuery := `SELECT COUNT(*) FROM requests WHERE status = 'pending'`
	if err := r.db.QueryRow(ctx, pendingQuery).Scan(&stats.PendingRequests); err != nil {
		return nil, fmt.Errorf("dashboard stats: count pending: %w", err)
	}

	languagesQuery := `SELECT COUNT(DISTINCT language) FROM interpreters`
	if err := r.db.QueryRow(ctx, languagesQuery).Scan(&stats.Languages); err != nil {
		return nil, fmt.Errorf("dashboard stats: count languages: %w", err)
	}

	byLanguageQuery := `
		SELECT language, COUNT(*)
		FROM interpreters
		WHERE availability_status = 'available'
		GROUP BY language
		ORDER BY language ASC
	`
	rows, err := r.db.Query(ctx, byLanguageQuery)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: available by language: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var row LanguageAvailability
		if err := rows.Scan(&row.Language, &row.Available); err != nil {
			return nil, fmt.Errorf("dashboard stats: scan language row: %w", err)
		}
		stats.AvailableByLanguage = append(stats.AvailableByLanguage, row)
		stats.AvailableInterpreters += row.Available
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dashboard stats: language rows: %w", err)
	}
	if stats.AvailableByLanguage == nil {
		stats.AvailableByLanguage = []LanguageAvailability{}
	}

	return stats, nil
}

// StatsHandler provides the dashboard endpoint with a short-lived Redis
// snapshot in front of the aggregate query.
type StatsHandler struct {
	repo     *StatsRepository
	redis    *redis.Client
	cacheTTL time.Duration
	logger   *logging.Logger
}

// NewStatsHandler creates a new dashboard stats handler. The Redis client
// is optional; without it every call hits the database.
func NewStatsHandler(repo *StatsRepository, redisClient *redis.Client, cacheTTL time.Duration, logger *logging.Logger) *StatsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Second
	}
	return &StatsHandler{
		repo:     repo,
		redis:    redisClient,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// GetStats handles GET /api/dashboard/stats requests
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if cached := h.readCache(r.Context()); cached != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Write(cached)
		return
	}

	stats, err := h.repo.GetStats(r.Context())
	if err != nil {
		h.logger.Error("failed to get dashboard stats", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		h.logger.Error("failed to encode dashboard stats", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	h.writeCache(r.Context(), payload)

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// readCache returns the cached snapshot or nil. Cache errors degrade to a
// database read, never a failed response.
func (h *StatsHandler) readCache(ctx context.Context) []byte {
	if h.redis == nil {
		return nil
	}
	payload, err := h.redis.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			h.logger.Warn("dashboard cache read failed", "error", err)
		}
		return nil
	}
	return payload
}

func (h *StatsHandler) writeCache(ctx context.Context, payload []byte) {
	if h.redis == nil {
		return
	}
	if err := h.redis.Set(ctx, statsCacheKey, payload, h.cacheTTL).Err(); err != nil {
		h.logger.Warn("dashboard cache write failed", "error", err)
	}
}
