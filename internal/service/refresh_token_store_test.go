package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisKVClient struct {
	lastSetKey string
	lastSetVal interface{}
	lastSetTTL time.Duration
	lastGetKey string
	lastDel    []string

	setErr error
	getErr error
	delErr error
	getVal string
}

func (m *mockRedisKVClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.lastSetKey = key
	m.lastSetVal = value
	m.lastSetTTL = expiration
	cmd := redis.NewStatusCmd(ctx)
	if m.setErr != nil {
		cmd.SetErr(m.setErr)
		return cmd
	}
	cmd.SetVal("OK")
	return cmd
}

func (m *mockRedisKVClient) Get(ctx context.Context, key string) *redis.StringCmd {
	m.lastGetKey = key
	cmd := redis.NewStringCmd(ctx)
	if m.getErr != nil {
		cmd.SetErr(m.getErr)
		return cmd
	}
	cmd.SetVal(m.getVal)
	return cmd
}

func (m *mockRedisKVClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.lastDel = keys
	cmd := redis.NewIntCmd(ctx)
	if m.delErr != nil {
		cmd.SetErr(m.delErr)
		return cmd
	}
	cmd.SetVal(1)
	return cmd
}

func TestMemoryRefreshTokenStore_Basics(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	_, ok, err := store.Lookup("missing")
	if err != nil || ok {
		t.Fatalf("expected missing token false,nil; got %v,%v", ok, err)
	}

	if err := store.Store("tok-1", 7, 50*time.Millisecond); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	userID, ok, err := store.Lookup("tok-1")
	if err != nil || !ok || userID != 7 {
		t.Fatalf("expected token for user 7, got %d,%v,%v", userID, ok, err)
	}

	time.Sleep(70 * time.Millisecond)
	_, ok, err = store.Lookup("tok-1")
	if err != nil || ok {
		t.Fatalf("expected token expired, got %v,%v", ok, err)
	}
}

func TestMemoryRefreshTokenStore_RevokeAndEmptyToken(t *testing.T) {
	store := NewMemoryRefreshTokenStore()
	if err := store.Store("", 7, time.Minute); err != nil {
		t.Fatalf("empty token store should be no-op, got %v", err)
	}
	if err := store.Store("tok-2", 7, time.Minute); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if err := store.Revoke("tok-2"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if err := store.Revoke("tok-2"); err != nil {
		t.Fatalf("revoking absent token should be no-op, got %v", err)
	}
	_, ok, err := store.Lookup("tok-2")
	if err != nil || ok {
		t.Fatalf("expected revoked token absent, got %v,%v", ok, err)
	}
}

func TestRedisRefreshTokenStore_Basics(t *testing.T) {
	mock := &mockRedisKVClient{getVal: "7"}
	store := &redisRefreshTokenStore{
		client: mock,
		prefix: "auth:refresh:",
	}

	if err := store.Store(" t1 ", 7, 0); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if mock.lastSetKey != "auth:refresh:t1" {
		t.Fatalf("unexpected key, got %q", mock.lastSetKey)
	}
	if mock.lastSetTTL <= 0 {
		t.Fatalf("expected positive TTL fallback, got %v", mock.lastSetTTL)
	}

	userID, ok, err := store.Lookup(" t1 ")
	if err != nil || !ok || userID != 7 {
		t.Fatalf("expected lookup 7,true,nil; got %d,%v,%v", userID, ok, err)
	}
	if mock.lastGetKey != "auth:refresh:t1" {
		t.Fatalf("unexpected get key: %q", mock.lastGetKey)
	}

	if err := store.Revoke(" t1 "); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if len(mock.lastDel) != 1 || mock.lastDel[0] != "auth:refresh:t1" {
		t.Fatalf("unexpected del key: %+v", mock.lastDel)
	}
}

func TestRedisRefreshTokenStore_MissingKey(t *testing.T) {
	mock := &mockRedisKVClient{getErr: redis.Nil}
	store := &redisRefreshTokenStore{
		client: mock,
		prefix: "auth:refresh:",
	}

	_, ok, err := store.Lookup("t2")
	if err != nil || ok {
		t.Fatalf("expected redis.Nil mapped to false,nil; got %v,%v", ok, err)
	}
}

func TestRedisRefreshTokenStore_ErrorPathsAndEmptyToken(t *testing.T) {
	mock := &mockRedisKVClient{
		setErr: errors.New("set failed"),
		getErr: errors.New("get failed"),
		delErr: errors.New("del failed"),
	}
	store := &redisRefreshTokenStore{
		client: mock,
		prefix: "auth:refresh:",
	}

	if err := store.Store("", 7, time.Minute); err != nil {
		t.Fatalf("empty token store should be no-op, got %v", err)
	}
	_, ok, err := store.Lookup("")
	if err != nil || ok {
		t.Fatalf("empty token lookup should be false,nil; got %v,%v", ok, err)
	}
	if err := store.Revoke(""); err != nil {
		t.Fatalf("empty token revoke should be no-op, got %v", err)
	}

	if err := store.Store("t3", 7, time.Minute); err == nil {
		t.Fatalf("expected store error")
	}
	if _, _, err := store.Lookup("t3"); err == nil {
		t.Fatalf("expected lookup error")
	}
	if err := store.Revoke("t3"); err == nil {
		t.Fatalf("expected revoke error")
	}
}
