package review

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// This test requires a running Redis instance
// If Redis is not available, the test will be skipped
func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()
	publisher := NewRedisPublisher(ctx, "localhost:6379", 0, "test_review_stream", 100)
	defer publisher.Close()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	defer client.Close()

	_, err := client.Ping(ctx).Result()
	if err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	err = client.XGroupCreateMkStream(ctx, "test_review_stream", "test_group", "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		panic(err)
	}

	messages := make(chan map[string]interface{}, 1)

	go func() {
		message, err := client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Streams:  []string{"test_review_stream", ">"},
			Group:    "test_group",
			Consumer: "test_consumer",
			Block:    0,
		}).Result()
		assert.NoError(t, err)
		messages <- message[0].Messages[0].Values
	}()

	time.Sleep(100 * time.Millisecond)

	blockedURL := "https://shop.example.com/item/1"
	err = publisher.Publish("shop.example.com", blockedURL)
	assert.NoError(t, err)

	select {
	case values := <-messages:
		assert.Equal(t, "shop.example.com", values["store"])
		// The URL is base64 encoded on the stream
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte(blockedURL)), values["url"])
	case <-time.After(1 * time.Second):
		t.Error("Timed out waiting for message")
	}

	assert.NoError(t, publisher.Trim())
}
