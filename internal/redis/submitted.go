package redis

import (
	"context"
	"time"
)

// SubmittedSet guards against placing two provider orders for one payment
// reference when Paystack redelivers a webhook. Keys expire after the
// configured TTL; beyond that window Bytewave's own reference-based
// deduplication is the backstop.
type SubmittedSet struct {
	client *Client
	ttl    time.Duration
}

func NewSubmittedSet(client *Client, ttl time.Duration) *SubmittedSet {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SubmittedSet{client: client, ttl: ttl}
}

// FirstSubmission atomically claims a reference. It returns true exactly
// once per reference within the TTL window; later callers get false.
func (s *SubmittedSet) FirstSubmission(ctx context.Context, reference string) (bool, error) {
	key := s.client.prefixKey("submitted:" + reference)
	return s.client.rdb.SetNX(ctx, key, "1", s.ttl).Result()
}

// Forget releases a claimed reference so a redelivery can retry it. Used
// when the provider call fails after the claim.
func (s *SubmittedSet) Forget(ctx context.Context, reference string) error {
	key := s.client.prefixKey("submitted:" + reference)
	return s.client.rdb.Del(ctx, key).Err()
}
