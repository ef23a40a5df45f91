package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
)

const (
	codeKeyPrefix     = "onboard:code:"
	verifiedKeyPrefix = "onboard:verified:"
)

// RedisStore shares codes and verified flags across instances. Expiry is
// delegated to Redis TTLs, so a vanished code reads as sentinel.ErrNotFound
// whether it expired or never existed.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func codeKey(identityID id.IdentityID, channel Channel) string {
	return codeKeyPrefix + string(channel) + ":" + identityID.String()
}

func verifiedKey(identityID id.IdentityID, channel Channel) string {
	return verifiedKeyPrefix + string(channel) + ":" + identityID.String()
}

func (s *RedisStore) PutCode(ctx context.Context, identityID id.IdentityID, channel Channel, record CodeRecord, ttl time.Duration) error {
	key := codeKey(identityID, channel)
	value := record.IssuedAt.UTC().Format(time.RFC3339Nano) + "|" + record.Code
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("store code: %w", err)
	}
	return nil
}

func (s *RedisStore) GetCode(ctx context.Context, identityID id.IdentityID, channel Channel) (CodeRecord, error) {
	value, err := s.client.Get(ctx, codeKey(identityID, channel)).Result()
	if errors.Is(err, redis.Nil) {
		return CodeRecord{}, sentinel.ErrNotFound
	}
	if err != nil {
		return CodeRecord{}, fmt.Errorf("read code: %w", err)
	}
	return parseCodeValue(value)
}

func (s *RedisStore) DeleteCode(ctx context.Context, identityID id.IdentityID, channel Channel) error {
	if err := s.client.Del(ctx, codeKey(identityID, channel)).Err(); err != nil {
		return fmt.Errorf("delete code: %w", err)
	}
	return nil
}

// MarkVerified sets the flag without a TTL: once verified, always verified.
func (s *RedisStore) MarkVerified(ctx context.Context, identityID id.IdentityID, channel Channel) error {
	if err := s.client.Set(ctx, verifiedKey(identityID, channel), "1", 0).Err(); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

func (s *RedisStore) IsVerified(ctx context.Context, identityID id.IdentityID, channel Channel) (bool, error) {
	_, err := s.client.Get(ctx, verifiedKey(identityID, channel)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read verified flag: %w", err)
	}
	return true, nil
}

func parseCodeValue(value string) (CodeRecord, error) {
	for i := 0; i < len(value); i++ {
		if value[i] != '|' {
			continue
		}
		issuedAt, err := time.Parse(time.RFC3339Nano, value[:i])
		if err != nil {
			return CodeRecord{}, fmt.Errorf("parse code timestamp: %w", err)
		}
		return CodeRecord{Code: value[i+1:], IssuedAt: issuedAt}, nil
	}
	return CodeRecord{}, fmt.Errorf("malformed code value")
}
