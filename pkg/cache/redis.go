package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/academic-dashboard/pkg/config"
)

// NewRedis returns a configured Redis client.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

const keyPrefix = "dashboard"

// StudentKey names the cached copy of one student collection, e.g. dashboard:student:12:grades.
func StudentKey(studentID int64, collection string) string {
	return fmt.Sprintf("%s:student:%d:%s", keyPrefix, studentID, collection)
}

// StudentPattern matches every cached collection of one student.
func StudentPattern(studentID int64) string {
	return fmt.Sprintf("%s:student:%d:*", keyPrefix, studentID)
}

// AllStudentsPattern matches cached collections of every student. Course-wide writes use it
// because a single assignment touches every enrolled student.
func AllStudentsPattern() string {
	return keyPrefix + ":student:*"
}
