package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"chatbot-platform/internal/config"
)

func TestNewPingsServer(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := New(context.Background(), config.RedisConfig{Addr: srv.Addr()})
	if err != nil {
		t.Fatalf("new redis client: %v", err)
	}
	defer client.Close()
}

func TestNewFailsWhenUnreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	if _, err := New(context.Background(), config.RedisConfig{Addr: addr}); err == nil {
		t.Fatalf("expected ping failure")
	}
}
