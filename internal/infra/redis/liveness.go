package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Liveness marks live sessions in Redis so ops tooling (and future
// multi-instance routing) can see which quizzes are running. Best effort:
// failures are swallowed, sessions do not depend on the marker.
type Liveness struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLiveness(client *redis.Client, ttl time.Duration) *Liveness {
	return &Liveness{client: client, ttl: ttl}
}

func (l *Liveness) MarkLive(ctx context.Context, quizID string) {
	_ = l.client.Set(ctx, l.key(quizID), "1", l.ttl).Err()
}

func (l *Liveness) ClearLive(ctx context.Context, quizID string) {
	_ = l.client.Del(ctx, l.key(quizID)).Err()
}

func (l *Liveness) key(quizID string) string {
	return "quiz:session:" + quizID
}
