package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/greenplate/myfridge/internal/db"
)

// delChunkSize bounds how many keys a single DEL command carries.
const delChunkSize = 500

// HSetMulti stores multiple hashes in a single DoMulti round-trip.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(items))
	for i, item := range items {
		cmd := s.b().Hset().Key(item.Key).FieldValue()
		for k, v := range item.Fields {
			cmd = cmd.FieldValue(k, v)
		}
		cmds[i] = cmd.Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", items[i].Key, err)}
		}
	}
	return nil
}

// Del deletes keys, chunked so a huge key list never builds one giant command.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	for len(keys) > 0 {
		chunk := keys
		if len(chunk) > delChunkSize {
			chunk = chunk[:delChunkSize]
		}
		keys = keys[len(chunk):]

		cmd := s.b().Del().Key(chunk...).Build()
		if err := s.do(ctx, cmd).Error(); err != nil {
			return &db.Error{Op: db.OpDel, Err: err}
		}
	}
	return nil
}

// Scan iterates keys matching a pattern.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}
