package realtimesvc

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/bths-repair/bths-repair-the-world/core"
)

// channelPrefix groups all per-event channels under one namespace so
// pattern subscriptions ("events.*") can watch everything at once.
const channelPrefix = "events."

type redisBroadcaster struct {
	client *redis.Client
}

var _ core.Broadcaster = (*redisBroadcaster)(nil)

func NewRedisBroadcaster(conf *core.Config) *redisBroadcaster {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	return &redisBroadcaster{client: client}
}

func (b redisBroadcaster) BroadcastAttendance(ctx context.Context, update core.AttendanceUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return errors.Wrap(err, "marshaling attendance update")
	}
	if err = b.client.Publish(ctx, channelPrefix+update.EventID, payload).Err(); err != nil {
		return errors.Wrap(err, "publishing attendance update")
	}
	return nil
}

func (b redisBroadcaster) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b redisBroadcaster) Close() error {
	return b.client.Close()
}
