package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type stubRedis struct {
	data map[string][]byte
}

func newStubRedis() *stubRedis {
	return &stubRedis{data: map[string][]byte{}}
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		s.data[key] = append([]byte(nil), v...)
	case string:
		s.data[key] = []byte(v)
	}
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if v, ok := s.data[key]; ok {
		cmd.SetVal(string(v))
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func TestStatesUsesCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/estados" || r.URL.Query().Get("orderBy") != "nome" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":12,"sigla":"AC","nome":"Acre"},{"id":27,"sigla":"AL","nome":"Alagoas"}]`))
	}))
	defer srv.Close()

	cache := newStubRedis()
	client := New(Config{BaseURL: srv.URL, CacheTTL: time.Hour}, cache)

	for i := 0; i < 2; i++ {
		states := client.States(context.Background())
		if len(states) != 2 || states[0].Sigla != "AC" || states[1].Nome != "Alagoas" {
			t.Fatalf("unexpected states: %+v", states)
		}
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected one upstream call, got %d", got)
	}
}

func TestCitiesNormalizesUF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/estados/SP/municipios" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`[{"id":3550308,"nome":"São Paulo"}]`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL}, nil)
	cities := client.Cities(context.Background(), " sp ")
	if len(cities) != 1 || cities[0].Nome != "São Paulo" {
		t.Fatalf("unexpected cities: %+v", cities)
	}
	if got := client.Cities(context.Background(), "xyz"); len(got) != 0 {
		t.Fatalf("invalid UF must return empty list, got %+v", got)
	}
}

func TestFailureReturnsEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, CacheTTL: time.Hour}, newStubRedis())
	states := client.States(context.Background())
	if states == nil || len(states) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", states)
	}
}
