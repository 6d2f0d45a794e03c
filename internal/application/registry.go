package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fxhistory-service/internal/domain"
)

// PairRegistry resolves currency pairs, creating them on demand on the
// scrape and report paths. Lookup-then-insert runs under a per-pair lock.
type PairRegistry struct {
	repo   PairRepo
	locker PairLocker
}

func NewPairRegistry(repo PairRepo, locker PairLocker) *PairRegistry {
	if locker == nil {
		locker = NewLocalPairLocker()
	}
	return &PairRegistry{repo: repo, locker: locker}
}

func pairLockKey(from, to string) string { return "pair:" + from + ":" + to }

func (r *PairRegistry) GetOrCreate(ctx context.Context, from, to string) (domain.CurrencyPair, error) {
	unlock, err := r.locker.Lock(ctx, pairLockKey(from, to))
	if err != nil {
		return domain.CurrencyPair{}, fmt.Errorf("lock pair %s/%s: %w", from, to, err)
	}
	defer unlock()

	p, err := r.repo.Find(ctx, from, to)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return domain.CurrencyPair{}, err
	}
	return r.repo.Create(ctx, from, to)
}

// Find looks a pair up without creating it.
func (r *PairRegistry) Find(ctx context.Context, from, to string) (domain.CurrencyPair, error) {
	return r.repo.Find(ctx, from, to)
}

// LocalPairLocker is an in-process keyed mutex.
type LocalPairLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

func NewLocalPairLocker() *LocalPairLocker {
	return &LocalPairLocker{locks: map[string]*keyLock{}}
}

func (l *LocalPairLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.release(key, kl)
		})
	}, nil
}

func (l *LocalPairLocker) release(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}
