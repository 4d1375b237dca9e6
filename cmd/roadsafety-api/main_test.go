package main

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadinessChecksWithoutRedis(t *testing.T) {
	checks := readinessChecks(func(context.Context) error { return nil }, nil)

	require.Len(t, checks, 1)
	require.Contains(t, checks, "database")
	assert.NoError(t, checks["database"](context.Background()))
}

func TestReadinessChecksRegistersRedis(t *testing.T) {
	dbErr := errors.New("db down")
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	checks := readinessChecks(func(context.Context) error { return dbErr }, client)

	require.Len(t, checks, 2)
	assert.Contains(t, checks, "redis")
	assert.ErrorIs(t, checks["database"](context.Background()), dbErr)
}
