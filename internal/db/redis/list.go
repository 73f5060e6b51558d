package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/askdb/internal/db"
)

// RPushTrim appends value and trims the list to the newest maxLen items in one round trip.
func (s *Store) RPushTrim(ctx context.Context, key string, value []byte, maxLen int) error {
	cmds := rueidis.Commands{s.b().Rpush().Key(key).Element(rueidis.BinaryString(value)).Build()}
	if maxLen > 0 {
		cmds = append(cmds, s.b().Ltrim().Key(key).Start(int64(-maxLen)).Stop(-1).Build())
	}

	ops := []string{db.OpRPush, db.OpLTrim}
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return &db.Error{Op: ops[i], Err: err}
		}
	}
	return nil
}

// LRange returns list items start..stop inclusive. A missing key yields an empty slice.
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	cmd := s.b().Lrange().Key(key).Start(start).Stop(stop).Build()
	msgs, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return [][]byte{}, nil
		}
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}

	out := make([][]byte, 0, len(msgs))
	for _, m := range msgs {
		b, err := m.AsBytes()
		if err != nil {
			return nil, &db.Error{Op: db.OpLRange, Err: err}
		}
		out = append(out, b)
	}
	return out, nil
}
