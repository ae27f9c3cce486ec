package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/gogotex/cocktails/internal/document"
	"github.com/gogotex/cocktails/internal/pipeline"
)

const defaultRedisPage = 100

// RedisRepo keeps each collection as a Redis list of BSON-encoded documents
// under key "<prefix><collection>". Fetch reads the list lazily, one LRANGE
// page at a time, up to the length the list had when Fetch was called.
type RedisRepo struct {
	client *redis.Client
	prefix string
	page   int64
}

// NewRedisRepo creates a Redis-backed store. Prefix may be empty.
func NewRedisRepo(client *redis.Client, prefix string) *RedisRepo {
	if prefix == "" {
		prefix = "cocktails:"
	}
	return &RedisRepo{client: client, prefix: prefix, page: defaultRedisPage}
}

func (r *RedisRepo) key(collection string) string {
	return r.prefix + collection
}

func (r *RedisRepo) Insert(ctx context.Context, collection string, docs ...document.Document) error {
	if len(docs) == 0 {
		return nil
	}
	vals := make([]interface{}, len(docs))
	for i, d := range docs {
		b, err := bson.Marshal(withID(d).D())
		if err != nil {
			return fmt.Errorf("encode %s document %d: %w", collection, i, err)
		}
		vals[i] = b
	}
	return r.client.RPush(ctx, r.key(collection), vals...).Err()
}

func (r *RedisRepo) Drop(ctx context.Context, collection string) error {
	return r.client.Del(ctx, r.key(collection)).Err()
}

func (r *RedisRepo) Fetch(ctx context.Context, collection string, filter pipeline.Predicate) (pipeline.Stream, error) {
	n, err := r.client.LLen(ctx, r.key(collection)).Result()
	if err != nil {
		return nil, err
	}
	s := &redisStream{client: r.client, key: r.key(collection), page: r.page, total: n}
	return pipeline.Filter(s, filter), nil
}

// redisStream pages through a list.
type redisStream struct {
	client *redis.Client
	key    string
	page   int64
	total  int64

	next int64
	buf  []string
	pos  int
	cur  document.Document
	err  error
}

func (s *redisStream) Next(ctx context.Context) bool {
	if s.err != nil {
		return false
	}
	if s.pos >= len(s.buf) {
		if s.next >= s.total {
			return false
		}
		stop := s.next + s.page - 1
		if stop >= s.total {
			stop = s.total - 1
		}
		vals, err := s.client.LRange(ctx, s.key, s.next, stop).Result()
		if err != nil {
			s.err = err
			return false
		}
		if len(vals) == 0 {
			// list was truncated underneath us
			s.next = s.total
			return false
		}
		s.next += int64(len(vals))
		s.buf, s.pos = vals, 0
	}
	var d bson.D
	if err := bson.Unmarshal([]byte(s.buf[s.pos]), &d); err != nil {
		s.err = fmt.Errorf("decode %s[%d]: %w", s.key, s.next-int64(len(s.buf))+int64(s.pos), err)
		return false
	}
	s.pos++
	s.cur = document.Document(d)
	return true
}

func (s *redisStream) Document() document.Document { return s.cur }
func (s *redisStream) Err() error                  { return s.err }

func (s *redisStream) Close(context.Context) error {
	s.buf, s.pos = nil, 0
	s.next = s.total
	return nil
}
