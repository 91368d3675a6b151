package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/skilltree-core-poc/server/internal/core/error"
	"github.com/skilltree-core-poc/server/internal/workflow/model"
	logx "github.com/skilltree-core-poc/server/pkg/logger"
)

// RedisSessionRepository stores one serialized SessionState snapshot
// per session id. Save is a full overwrite (last-write-wins); per-key
// atomicity is all the workflow requires, so no cross-session
// transactions are used.
type RedisSessionRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisSessionRepository(rdb redis.Cmdable, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisSessionRepository) sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s:state", sessionID)
}

// Load returns the hydrated session, or (nil, nil) when no snapshot
// exists so the engine can create a fresh one.
func (r *RedisSessionRepository) Load(ctx context.Context, sessionID string) (*model.SessionState, error) {
	key := r.sessionKey(sessionID)

	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load session snapshot from redis")
		return nil, errx.WrapRedis(err)
	}

	state, err := model.HydrateSession(raw)
	if err != nil {
		logx.Error().Err(err).Str("sessionID", sessionID).Msg("failed to hydrate session snapshot")
		return nil, fmt.Errorf("hydrate session %s: %w", sessionID, err)
	}
	return state, nil
}

// Save overwrites the stored snapshot and refreshes its TTL.
func (r *RedisSessionRepository) Save(ctx context.Context, state *model.SessionState) error {
	b, err := state.Snapshot()
	if err != nil {
		logx.Error().Err(err).Str("sessionID", state.ID).Msg("failed to marshal session snapshot")
		return err
	}
	key := r.sessionKey(state.ID)

	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to write session snapshot to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

// Delete removes the stored snapshot. Retention is otherwise an
// external concern; the workflow never calls this on its own.
func (r *RedisSessionRepository) Delete(ctx context.Context, sessionID string) error {
	key := r.sessionKey(sessionID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete session snapshot from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.SessionRepository = (*RedisSessionRepository)(nil)
