package db

import (
	"context"
	"testing"
)

func TestInitPostgresDisabledWithoutURL(t *testing.T) {
	pool, err := InitPostgres(context.Background(), "")
	if err != nil || pool != nil {
		t.Fatalf("expected disabled mirror, got pool=%v err=%v", pool, err)
	}
	if Pool != nil {
		t.Fatal("package pool must stay nil")
	}
}

func TestInitPostgresInvalidURL(t *testing.T) {
	if _, err := InitPostgres(context.Background(), "postgres://%zz"); err == nil {
		t.Fatal("expected parse error")
	}
}
