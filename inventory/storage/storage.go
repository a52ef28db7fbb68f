package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"
)

// ErrNoSnapshot reports that no snapshot exists yet at the backing location.
var ErrNoSnapshot = errors.New("no inventory snapshot")

// State is a durable home for the inventory snapshot. Load returns
// ErrNoSnapshot when nothing has been written yet.
type State interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// IsNoSnapshot reports whether err means the snapshot simply doesn't exist.
func IsNoSnapshot(err error) bool {
	return errors.Is(err, ErrNoSnapshot) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist)
}

// TestState is a simple in-memory implementation for testing
type TestState struct {
	mu   sync.Mutex
	data []byte
	err  error
}

func NewTestState(data []byte) *TestState {
	return &TestState{data: data}
}

func NewTestStateWithError(err error) *TestState {
	return &TestState{err: err}
}

func (t *TestState) Load(ctx context.Context) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return nil, t.err
	}
	if t.data == nil {
		return nil, ErrNoSnapshot
	}
	return t.data, nil
}

func (t *TestState) Save(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.data = append([]byte(nil), data...)
	return nil
}
