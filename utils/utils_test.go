package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// bcrypt: right password passes, wrong one fails.
func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("p@ss")
	if err != nil {
		t.Fatalf("hash err: %v", err)
	}
	if !CheckPasswordHash("p@ss", hashed) {
		t.Fatalf("should match")
	}
	if CheckPasswordHash("hahaha", hashed) {
		t.Fatalf("should not match")
	}
}

func TestJWTGenerateAndVerify(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	token, err := tm.GenerateToken(Identity{UserID: 87, Email: "a@b.com", IsAdmin: true})
	if err != nil {
		t.Fatalf("gen token err: %v", err)
	}
	id, err := tm.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify err: %v", err)
	}
	if id.UserID != 87 || id.Email != "a@b.com" || !id.IsAdmin {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestVerifyToken_Tampered_Fails(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	tok, err := tm.GenerateToken(Identity{UserID: 99})
	if err != nil {
		t.Fatalf("gen: %v", err)
	}
	if _, err := tm.VerifyToken(tok + "x"); err == nil {
		t.Fatalf("expect verify to fail on tampered token")
	}
}

func TestVerifyToken_OtherSecret_Fails(t *testing.T) {
	tok, _ := NewTokenManager("one", time.Hour).GenerateToken(Identity{UserID: 1})
	if _, err := NewTokenManager("two", time.Hour).VerifyToken(tok); err == nil {
		t.Fatalf("token signed with another secret must not verify")
	}
}

func TestVerifyToken_Expired_Fails(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Minute)
	issued := time.Now()
	tm.now = func() time.Time { return issued }
	tok, err := tm.GenerateToken(Identity{UserID: 5})
	if err != nil {
		t.Fatalf("gen: %v", err)
	}

	tm.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := tm.VerifyToken(tok); err != ErrTokenInvalid {
		t.Fatalf("want ErrTokenInvalid, got %v", err)
	}
}

func TestCacheInvalidator_PurgeOnlyNamedNamespaces(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	for _, k := range []string{"cache:events:a", "cache:events:b", "cache:categories:c", "quota:user:1:day"} {
		if err := rdb.Set(ctx, k, "1", 0).Err(); err != nil {
			t.Fatalf("seed %s: %v", k, err)
		}
	}

	NewCacheInvalidator(rdb).Purge(ctx, "events")

	if mr.Exists("cache:events:a") || mr.Exists("cache:events:b") {
		t.Fatalf("events namespace should be purged")
	}
	if !mr.Exists("cache:categories:c") || !mr.Exists("quota:user:1:day") {
		t.Fatalf("other keys must survive")
	}
}

func TestCacheInvalidator_NilIsNoop(t *testing.T) {
	var ci *CacheInvalidator
	ci.Purge(context.Background(), "events")
}
