package auth

import (
	"context"
	"fmt"

	"github.com/willemschots/newsroom/internal/krypto"
	"golang.org/x/sync/semaphore"
)

// HashPool bounds the number of goroutines concurrently running argon2
// work. Hashing is deliberately expensive, doing it inline on request
// goroutines would let a burst of login attempts starve the rest of the
// server of CPU.
type HashPool struct {
	sem *semaphore.Weighted
}

// NewHashPool creates a pool that allows up to workers concurrent
// hash or verify operations.
func NewHashPool(workers int) (*HashPool, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("hash pool needs at least one worker, got %d", workers)
	}

	return &HashPool{
		sem: semaphore.NewWeighted(int64(workers)),
	}, nil
}

// Hash hashes the password on one of the pool slots. Waiting for a free
// slot respects ctx, but once the work has started it always runs to
// completion.
func (p *HashPool) Hash(ctx context.Context, pwd Password) (krypto.Argon2Hash, error) {
	var hash krypto.Argon2Hash
	err := p.run(ctx, func() error {
		var hErr error
		hash, hErr = krypto.HashArgon2(pwd.plain)
		return hErr
	})
	if err != nil {
		return krypto.Argon2Hash{}, err
	}

	return hash, nil
}

// Verify checks the password against the hash on one of the pool slots.
func (p *HashPool) Verify(ctx context.Context, pwd Password, hash krypto.Argon2Hash) (bool, error) {
	var ok bool
	err := p.run(ctx, func() error {
		ok = hash.MatchBytes(pwd.plain)
		return nil
	})
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (p *HashPool) run(ctx context.Context, work func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("failed to acquire hash pool slot: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		defer p.sem.Release(1)
		done <- work()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		// The work keeps running until it releases its slot, we just
		// stop waiting for the result.
		return ctx.Err()
	}
}
