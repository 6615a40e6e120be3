package metadata

import (
	"context"
	"maps"
)

type opKind int

const (
	opSet opKind = iota
	opDelete
	opClear
)

type op struct {
	kind  opKind
	key   string
	value []byte
}

// staged records writes made inside a Batch for backends without real
// transactions. Reads see pending writes layered over base.
type staged struct {
	base    Repository
	ops     []op
	pending map[string][]byte // nil value marks a pending delete
	cleared bool
}

func newStaged(base Repository) *staged {
	return &staged{base: base, pending: make(map[string][]byte)}
}

func (s *staged) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := s.pending[key]; ok {
		return v, nil
	}
	if s.cleared {
		return nil, nil
	}
	return s.base.Get(ctx, key)
}

func (s *staged) Set(_ context.Context, key string, value []byte) error {
	v := append([]byte{}, value...)
	s.pending[key] = v
	s.ops = append(s.ops, op{kind: opSet, key: key, value: v})
	return nil
}

func (s *staged) Delete(_ context.Context, key string) error {
	s.pending[key] = nil
	s.ops = append(s.ops, op{kind: opDelete, key: key})
	return nil
}

func (s *staged) Clear(_ context.Context) error {
	s.cleared = true
	clear(s.pending)
	s.ops = append(s.ops, op{kind: opClear})
	return nil
}

func (s *staged) List(ctx context.Context) (map[string][]byte, error) {
	result := make(map[string][]byte)
	if !s.cleared {
		base, err := s.base.List(ctx)
		if err != nil {
			return nil, err
		}
		maps.Copy(result, base)
	}
	for k, v := range s.pending {
		if v == nil {
			delete(result, k)
			continue
		}
		result[k] = v
	}
	return result, nil
}
