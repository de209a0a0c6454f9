package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "github.com/lib/pq"

	"github.com/iWorld-y/alert_me/internal/config"
	"github.com/iWorld-y/alert_me/internal/model"
	"github.com/iWorld-y/alert_me/internal/source"
)

// 运行状态
const (
	StatusRunning   = "running"
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
)

// Storage 运行记录与轮转状态的 Postgres 存储
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements source.StateStore
var _ source.StateStore = (*Storage)(nil)

// DSN 优先使用完整连接串，否则由各字段拼接
func DSN(cfg config.DBConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
}

func NewStorage(ctx context.Context, cfg config.DBConfig) (*Storage, error) {
	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS alert_runs (
			id SERIAL PRIMARY KEY,
			started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			finished_at TIMESTAMP,
			group_index INTEGER,
			group_count INTEGER,
			result_offset INTEGER,
			status TEXT NOT NULL,
			error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS alert_results (
			id SERIAL PRIMARY KEY,
			run_id INTEGER REFERENCES alert_runs(id),
			term TEXT NOT NULL,
			country TEXT NOT NULL,
			position INTEGER NOT NULL,
			title TEXT,
			link TEXT,
			snippet TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS rotation_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			group_count INTEGER NOT NULL,
			current_group INTEGER NOT NULL,
			result_offset INTEGER NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}

	return nil
}

// CreateRun 记录一次运行的开始，轮转状态在 FinishRun 时补上
func (s *Storage) CreateRun(ctx context.Context) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO alert_runs (started_at, status)
		VALUES ($1, $2)
		RETURNING id`,
		time.Now(), StatusRunning).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return id, nil
}

// FinishRun 更新运行结果，runErr 为空表示报告已送达
func (s *Storage) FinishRun(ctx context.Context, runID int, state model.RotationState, runErr error) error {
	status, errText := StatusDelivered, ""
	if runErr != nil {
		status, errText = StatusFailed, sanitize(runErr.Error())
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE alert_runs SET finished_at = $2, status = $3, error = NULLIF($4, ''),
			group_index = $5, group_count = $6, result_offset = $7
		WHERE id = $1`,
		runID, time.Now(), status, errText,
		state.CurrentGroup, state.GroupCount, state.ResultOffset)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// SaveResults 保存本次运行送达的结果
func (s *Storage) SaveResults(ctx context.Context, runID int, rep model.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO alert_results (run_id, term, country, position, title, link, snippet)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range rep.Terms {
		for _, c := range t.Countries {
			for i, r := range c.Results {
				if _, err := stmt.ExecContext(ctx, runID, t.Term, c.Country, i,
					sanitize(r.Title), sanitize(r.Link), sanitize(r.Snippet)); err != nil {
					return fmt.Errorf("failed to insert result: %w", err)
				}
			}
		}
	}

	return tx.Commit()
}

// LoadState implements source.StateStore
func (s *Storage) LoadState(ctx context.Context) (model.RotationState, error) {
	var state model.RotationState
	err := s.db.QueryRowContext(ctx, `
		SELECT group_count, current_group, result_offset FROM rotation_state WHERE id = 1`).
		Scan(&state.GroupCount, &state.CurrentGroup, &state.ResultOffset)
	if errors.Is(err, sql.ErrNoRows) {
		return state, model.NewConfigError("rotation_state table has no row, seed it before the first run")
	}
	if err != nil {
		return state, fmt.Errorf("failed to load rotation state: %w", err)
	}
	return state, nil
}

// SaveState implements source.StateStore
func (s *Storage) SaveState(ctx context.Context, state model.RotationState) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rotation_state (id, group_count, current_group, result_offset, updated_at)
		VALUES (1, $1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			group_count = EXCLUDED.group_count,
			current_group = EXCLUDED.current_group,
			result_offset = EXCLUDED.result_offset,
			updated_at = EXCLUDED.updated_at`,
		state.GroupCount, state.CurrentGroup, state.ResultOffset)
	if err != nil {
		return fmt.Errorf("failed to save rotation state: %w", err)
	}
	return nil
}

// sanitize 移除无效 UTF-8 与 NULL 字节，PostgreSQL 文本字段不接受
func sanitize(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.ReplaceAll(s, "\x00", "")
}
