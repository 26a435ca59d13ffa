package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"wordfight/store"
)

// ResultStore 已持久化对局结果的查询
type ResultStore interface {
	Recent(ctx context.Context, limit int) ([]store.MatchResult, error)
	Leaderboard(ctx context.Context, limit int) ([]store.LeaderboardEntry, error)
}

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleAdminConfig 读取与热更新规则参数
// GET /admin/config  返回当前配置
// POST /admin/config 以 JSON 载荷更新 arenaSize，只影响之后创建的对局
func (s *Server) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	type cfg struct {
		ArenaSize *int `json:"arenaSize,omitempty"`
		TickRate  *int `json:"tickRate,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		size, tps := s.world.ArenaSize(), s.world.TickRate()
		writeJSON(w, http.StatusOK, cfg{ArenaSize: &size, TickRate: &tps})
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.TickRate != nil {
			http.Error(w, "tickRate is not hot-reloadable", http.StatusBadRequest)
			return
		}
		if body.ArenaSize != nil {
			if err := s.world.SetArenaSize(*body.ArenaSize); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			Log.Infow("config updated", "arena_size", *body.ArenaSize)
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出运行指标
// GET /metrics
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tick":    s.world.CurrentTick(),
		"metrics": s.world.Metrics().Snapshot(),
	})
}

// HandleResults 最近结束的对局
// GET /admin/results?limit=20
func (s *Server) HandleResults(w http.ResponseWriter, r *http.Request) {
	if s.opts.Results == nil {
		http.Error(w, "results store disabled", http.StatusServiceUnavailable)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	results, err := s.opts.Results.Recent(ctx, limit)
	if err != nil {
		Log.Errorw("query results", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// HandleLeaderboard 按累计得分排名
// GET /leaderboard?limit=20
func (s *Server) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.opts.Results == nil {
		http.Error(w, "results store disabled", http.StatusServiceUnavailable)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	entries, err := s.opts.Results.Leaderboard(ctx, limit)
	if err != nil {
		Log.Errorw("query leaderboard", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

// HandleToken 签发会话令牌
// GET|POST /token?name=alice
func (s *Server) HandleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.opts.Tokens == nil {
		http.Error(w, "tokens disabled", http.StatusServiceUnavailable)
		return
	}
	name, err := cleanName(r.URL.Query().Get("name"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}
	token, sess, err := s.opts.Tokens.Issue(name)
	if err != nil {
		Log.Errorw("issue token", "error", err)
		http.Error(w, "issue failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "session": sess})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, strconv.ErrSyntax
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, nil
}
