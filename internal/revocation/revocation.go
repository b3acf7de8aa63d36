// revocation — список access-токенов, отозванных выходом из аккаунта.
//
// Токен не хранится: ключ — sha256 от токена, TTL — остаток срока жизни,
// после которого токен всё равно отсекается по exp.
package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// List — минимальный контракт списка отозванных токенов.
type List interface {
	// Revoke помечает токен отозванным до момента until.
	Revoke(ctx context.Context, token string, until time.Time) error
	// IsRevoked сообщает, отозван ли токен.
	IsRevoked(ctx context.Context, token string) (bool, error)
	// Close закрывает клиент.
	Close() error
}

// minTTL — нижняя граница TTL, чтобы запись не пропала раньше, чем до неё дойдёт гейт.
const minTTL = time.Second

type redisList struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedis создаёт список поверх Redis из URL (redis://:pass@host:6379/0).
// Если prefix пустой — используется "blastify:revoked:".
func NewRedis(ctx context.Context, redisURL, prefix string) (List, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return newRedisList(rdb, prefix, time.Now), nil
}

func newRedisList(rdb *redis.Client, prefix string, now func() time.Time) *redisList {
	if prefix == "" {
		prefix = "blastify:revoked:"
	}

	return &redisList{rdb: rdb, prefix: prefix, now: now}
}

func (l *redisList) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return l.prefix + hex.EncodeToString(sum[:])
}

func (l *redisList) Revoke(ctx context.Context, token string, until time.Time) error {
	if token == "" {
		return nil
	}

	ttl := until.Sub(l.now())
	if ttl < minTTL {
		ttl = minTTL
	}

	return l.rdb.Set(ctx, l.key(token), "1", ttl).Err()
}

func (l *redisList) IsRevoked(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	err := l.rdb.Get(ctx, l.key(token)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}

func (l *redisList) Close() error { return l.rdb.Close() }
