package service

import (
	"context"
	"strconv"

	"github.com/Skotchmaster/fashion_store/pkg/events"
	"github.com/Skotchmaster/fashion_store/pkg/logging"
)

// publish sends an event after the state change it describes is committed.
// A broker failure never fails the request.
func publish(ctx context.Context, pub events.Publisher, topic string, key uint, event map[string]any) {
	if pub == nil {
		return
	}
	if err := pub.PublishEvent(ctx, topic, strconv.FormatUint(uint64(key), 10), event); err != nil {
		logging.FromContext(ctx).Warn("publish_error", "topic", topic, "type", event["type"], "error", err)
	}
}
