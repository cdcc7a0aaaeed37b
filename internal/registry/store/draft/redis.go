package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"mhregistry/internal/registry/models"
	"mhregistry/pkg/domain"
	"mhregistry/pkg/platform/sentinel"
)

const (
	// Redis key layout:
	//   mhr:draft:<number>     draft JSON, TTL DefaultTTL
	//   mhr:drafts:<account>   set of draft numbers for listing
	//   mhr:draft:seq          draft number sequence
	draftKeyPrefix   = "mhr:draft:"
	accountKeyPrefix = "mhr:drafts:"
	sequenceKey      = "mhr:draft:seq"

	// sequenceStart keeps generated numbers seven digits wide.
	sequenceStart = 1000000
)

// RedisStore is a Redis-backed draft store. Drafts expire on their own via
// TTL; the account index is re-derived on read so expired members drop out.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed draft store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func draftKey(number domain.DraftNumber) string {
	return draftKeyPrefix + number.String()
}

func accountKey(accountID domain.AccountID) string {
	return accountKeyPrefix + accountID.String()
}

func (s *RedisStore) Put(ctx context.Context, draft *models.Draft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, draftKey(draft.DraftNumber), payload, DefaultTTL)
	pipe.SAdd(ctx, accountKey(draft.AccountID), draft.DraftNumber.String())
	pipe.Expire(ctx, accountKey(draft.AccountID), DefaultTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, accountID domain.AccountID, number domain.DraftNumber) (*models.Draft, error) {
	payload, err := s.client.Get(ctx, draftKey(number)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("draft %s: %w", number, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	var draft models.Draft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}
	// AccountID is excluded from the JSON payload; recover ownership from
	// the account index.
	member, err := s.client.SIsMember(ctx, accountKey(accountID), number.String()).Result()
	if err != nil {
		return nil, fmt.Errorf("check draft ownership: %w", err)
	}
	if !member {
		return nil, fmt.Errorf("draft %s: %w", number, sentinel.ErrNotFound)
	}
	draft.AccountID = accountID
	return &draft, nil
}

func (s *RedisStore) Delete(ctx context.Context, accountID domain.AccountID, number domain.DraftNumber) error {
	member, err := s.client.SIsMember(ctx, accountKey(accountID), number.String()).Result()
	if err != nil {
		return fmt.Errorf("check draft ownership: %w", err)
	}
	if !member {
		return fmt.Errorf("draft %s: %w", number, sentinel.ErrNotFound)
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, draftKey(number))
	pipe.SRem(ctx, accountKey(accountID), number.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

func (s *RedisStore) ListByAccount(ctx context.Context, accountID domain.AccountID) ([]*models.Draft, error) {
	numbers, err := s.client.SMembers(ctx, accountKey(accountID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list draft numbers: %w", err)
	}

	var drafts []*models.Draft
	var expired []any
	for _, num := range numbers {
		payload, err := s.client.Get(ctx, draftKeyPrefix+num).Bytes()
		if errors.Is(err, redis.Nil) {
			expired = append(expired, num)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load draft %s: %w", num, err)
		}
		var draft models.Draft
		if err := json.Unmarshal(payload, &draft); err != nil {
			return nil, fmt.Errorf("unmarshal draft %s: %w", num, err)
		}
		draft.AccountID = accountID
		drafts = append(drafts, &draft)
	}
	if len(expired) > 0 {
		// Opportunistic index cleanup for TTL-expired drafts.
		_ = s.client.SRem(ctx, accountKey(accountID), expired...).Err()
	}
	return drafts, nil
}

func (s *RedisStore) NextDraftNumber(ctx context.Context) (domain.DraftNumber, error) {
	seq, err := s.client.Incr(ctx, sequenceKey).Result()
	if err != nil {
		return "", fmt.Errorf("next draft number: %w", err)
	}
	return domain.FormatDraftNumber(sequenceStart + seq), nil
}
