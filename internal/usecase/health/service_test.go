package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockStorePinger struct {
	err error
}

func (m *mockStorePinger) Ping(_ context.Context) error { return m.err }

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) PingContext(_ context.Context) error { return m.err }

type mockEmbeddingChecker struct {
	err error
}

func (m *mockEmbeddingChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockStorePinger{}, &mockDBPinger{}, &mockEmbeddingChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{"vector_store", "database", "embedding"} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
}

func TestCheck_StoreError_IsFatal(t *testing.T) {
	svc := New(&mockStorePinger{err: errors.New("conn refused")}, &mockDBPinger{}, &mockEmbeddingChecker{})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["vector_store"] != CheckError {
		t.Errorf("expected vector_store %q, got %q", CheckError, r.Checks["vector_store"])
	}
}

func TestCheck_DBError_Degrades(t *testing.T) {
	svc := New(&mockStorePinger{}, &mockDBPinger{err: errors.New("locked")}, &mockEmbeddingChecker{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
	if r.Checks["vector_store"] != CheckOK {
		t.Errorf("expected vector_store %q, got %q", CheckOK, r.Checks["vector_store"])
	}
}

func TestCheck_EmbeddingError_Degrades(t *testing.T) {
	svc := New(&mockStorePinger{}, &mockDBPinger{}, &mockEmbeddingChecker{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["embedding"] != CheckError {
		t.Errorf("expected embedding %q, got %q", CheckError, r.Checks["embedding"])
	}
}

func TestCheck_AllFail(t *testing.T) {
	svc := New(
		&mockStorePinger{err: errors.New("store down")},
		&mockDBPinger{err: errors.New("db down")},
		&mockEmbeddingChecker{err: errors.New("emb down")},
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	for _, name := range []string{"vector_store", "database", "embedding"} {
		if r.Checks[name] != CheckError {
			t.Errorf("expected %s error", name)
		}
	}
}

func TestCheck_OptionalComponentsAbsent(t *testing.T) {
	svc := New(&mockStorePinger{}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["database"]; ok {
		t.Error("database check should be absent when db is nil")
	}
	if _, ok := r.Checks["embedding"]; ok {
		t.Error("embedding check should be absent when embedding is nil")
	}
}
