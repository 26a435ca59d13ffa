package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// MatchResult 一场已结束对局的记录，在对局拆除时产生
type MatchResult struct {
	ID          string    `json:"id"`
	ArenaSize   int       `json:"arenaSize"`
	LeftName    string    `json:"leftName"`
	RightName   string    `json:"rightName"`
	LeftPoints  int       `json:"leftPoints"`
	RightPoints int       `json:"rightPoints"`
	Strikes     int       `json:"strikes"`
	Reason      string    `json:"reason"`
	StartedAt   time.Time `json:"startedAt"`
	EndedAt     time.Time `json:"endedAt"`
}

// LeaderboardEntry 按玩家名聚合的成绩
type LeaderboardEntry struct {
	Name    string `json:"name"`
	Points  int    `json:"points"`
	Best    int    `json:"best"`
	Matches int    `json:"matches"`
}

// Store 对局结果持久化；写入在独立协程中完成，Tick 线程只做非阻塞投递
type Store struct {
	db    *sql.DB
	queue chan MatchResult
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS match_results (
		id TEXT PRIMARY KEY,
		arena_size INTEGER NOT NULL,
		left_name TEXT NOT NULL,
		right_name TEXT NOT NULL,
		left_points INTEGER NOT NULL DEFAULT 0,
		right_points INTEGER NOT NULL DEFAULT 0,
		strikes INTEGER NOT NULL DEFAULT 0,
		reason TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL,
		ended_at TIMESTAMP NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_match_results_ended ON match_results(ended_at);`,
}

// Open 打开（必要时创建）数据库并建表
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// 单写者，避免 SQLITE_BUSY
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA busy_timeout=5000;"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &Store{db: db, queue: make(chan MatchResult, 128)}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record 非阻塞投递，队列满时丢弃并返回 false
func (s *Store) Record(r MatchResult) bool {
	select {
	case s.queue <- r:
		return true
	default:
		return false
	}
}

// Run 写协程：消费队列直到 ctx 结束，结束前把已排队的记录写完
func (s *Store) Run(ctx context.Context, log *zap.SugaredLogger) {
	save := func(r MatchResult) {
		wctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Save(wctx, r); err != nil {
			log.Errorw("save match result failed", "match", r.ID, "error", err)
		}
	}
	for {
		select {
		case r := <-s.queue:
			save(r)
		case <-ctx.Done():
			for {
				select {
				case r := <-s.queue:
					save(r)
				default:
					return
				}
			}
		}
	}
}

// Save 同步写入一条结果
func (s *Store) Save(ctx context.Context, r MatchResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO match_results
			(id, arena_size, left_name, right_name, left_points, right_points, strikes, reason, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ArenaSize, r.LeftName, r.RightName, r.LeftPoints, r.RightPoints, r.Strikes, r.Reason,
		r.StartedAt.UTC(), r.EndedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert match result %s: %w", r.ID, err)
	}
	return nil
}

// Recent 最近结束的对局，按结束时间倒序
func (s *Store) Recent(ctx context.Context, limit int) ([]MatchResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, arena_size, left_name, right_name, left_points, right_points, strikes, reason, started_at, ended_at
		FROM match_results ORDER BY ended_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent results: %w", err)
	}
	defer rows.Close()

	var out []MatchResult
	for rows.Next() {
		var r MatchResult
		if err := rows.Scan(&r.ID, &r.ArenaSize, &r.LeftName, &r.RightName, &r.LeftPoints, &r.RightPoints,
			&r.Strikes, &r.Reason, &r.StartedAt, &r.EndedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Leaderboard 按总得分排序；缺席成员（空名）不计入
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, SUM(points) AS total, MAX(points), COUNT(*)
		FROM (
			SELECT left_name AS name, left_points AS points FROM match_results
			UNION ALL
			SELECT right_name AS name, right_points AS points FROM match_results
		)
		WHERE name <> ''
		GROUP BY name ORDER BY total DESC, name ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Name, &e.Points, &e.Best, &e.Matches); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
