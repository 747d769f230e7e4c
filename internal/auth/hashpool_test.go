package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/willemschots/newsroom/internal/auth"
)

func Test_HashPool(t *testing.T) {
	t.Run("ok, hash and verify round trip", func(t *testing.T) {
		pool, err := auth.NewHashPool(2)
		if err != nil {
			t.Fatalf("failed to create pool: %v", err)
		}

		pwd := mustParsePassword(t, "reallyStrongPassword1")

		hash, err := pool.Hash(context.Background(), pwd)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}

		ok, err := pool.Verify(context.Background(), pwd, hash)
		if err != nil {
			t.Fatalf("failed to verify password: %v", err)
		}

		if !ok {
			t.Errorf("expected password to match its own hash")
		}

		other := mustParsePassword(t, "r0sebudmaelstrom11/20/91aaaa")
		ok, err = pool.Verify(context.Background(), other, hash)
		if err != nil {
			t.Fatalf("failed to verify password: %v", err)
		}

		if ok {
			t.Errorf("expected different password to not match")
		}
	})

	t.Run("fail, cancelled context while waiting for a slot", func(t *testing.T) {
		pool, err := auth.NewHashPool(1)
		if err != nil {
			t.Fatalf("failed to create pool: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		pwd := mustParsePassword(t, "reallyStrongPassword1")

		_, err = pool.Hash(ctx, pwd)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected error %v, got %v (via errors.Is)", context.Canceled, err)
		}
	})

	t.Run("fail, zero workers", func(t *testing.T) {
		_, err := auth.NewHashPool(0)
		if err == nil {
			t.Fatalf("expected error, got nil")
		}
	})
}

func mustParsePassword(t *testing.T, raw string) auth.Password {
	t.Helper()

	pwd, err := auth.ParsePassword(raw)
	if err != nil {
		t.Fatalf("failed to parse password: %v", err)
	}

	return pwd
}
