package rpcmeta

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type pingArgs struct{ Token string }

type pingResult struct {
	Success *string
	Refused *refusedError
}

func (r *pingResult) SetSuccess(v any) {
	val := v.(string)
	r.Success = &val
}

func (r *pingResult) SetException(err error) bool {
	var refused *refusedError
	if errors.As(err, &refused) {
		r.Refused = refused
		return true
	}
	return false
}

type refusedError struct{ Reason string }

func (e *refusedError) Error() string { return e.Reason }

type pingService struct {
	fired chan string
}

func (s *pingService) Ping(_ context.Context, args *pingArgs) (string, error) {
	if args.Token == "refuse" {
		return "", &refusedError{Reason: "refused"}
	}
	return "pong:" + args.Token, nil
}

func (s *pingService) PingLater(_ context.Context, args *pingArgs) *Future {
	fut := NewFuture()
	go func() { fut.Complete("pong:" + args.Token) }()
	return fut
}

func (s *pingService) Fire(_ context.Context, args *pingArgs) error {
	s.fired <- args.Token
	return nil
}

func testDesc() ServiceDesc {
	return ServiceDesc{
		Name: "PingService",
		Methods: []MethodDesc{
			{
				Name:      "ping",
				NewArgs:   func() any { return new(pingArgs) },
				NewResult: func() ResultStruct { return new(pingResult) },
			},
			{
				Name:      "pingLater",
				NewArgs:   func() any { return new(pingArgs) },
				NewResult: func() ResultStruct { return new(pingResult) },
			},
			{
				Name:    "fire",
				OneWay:  true,
				NewArgs: func() any { return new(pingArgs) },
			},
		},
	}
}

func mustRegistry(t *testing.T) (*Registry, *pingService) {
	t.Helper()
	svc := &pingService{fired: make(chan string, 1)}
	reg, err := NewRegistry(testDesc(), svc)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg, svc
}

func TestRegistryClassifiesHandlers(t *testing.T) {
	reg, _ := mustRegistry(t)
	if reg.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", reg.Len())
	}

	cases := map[string]HandlerKind{
		"ping":      KindSync,
		"pingLater": KindAsync,
		"fire":      KindOneWay,
	}
	for name, kind := range cases {
		m := reg.Lookup(name)
		if m == nil {
			t.Fatalf("Lookup(%q) = nil", name)
		}
		if m.Kind() != kind {
			t.Errorf("%s: kind = %s, want %s", name, m.Kind(), kind)
		}
		if m.Service() != "PingService" {
			t.Errorf("%s: service = %q", name, m.Service())
		}
	}
}

func TestRegistryLookupUnknown(t *testing.T) {
	reg, _ := mustRegistry(t)
	if m := reg.Lookup("nope"); m != nil {
		t.Fatalf("Lookup(nope) = %v, want nil", m)
	}
}

func TestSyncCall(t *testing.T) {
	reg, _ := mustRegistry(t)
	m := reg.Lookup("ping")

	v, err := m.Call(context.Background(), &pingArgs{Token: "a"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v != "pong:a" {
		t.Errorf("Call = %v, want pong:a", v)
	}

	_, err = m.Call(context.Background(), &pingArgs{Token: "refuse"})
	var refused *refusedError
	if !errors.As(err, &refused) {
		t.Fatalf("Call error = %v, want *refusedError", err)
	}

	result := m.NewResult()
	if !result.SetException(err) {
		t.Fatal("SetException rejected a declared exception")
	}
	if result.(*pingResult).Refused == nil {
		t.Fatal("declared exception field not set")
	}
	if result.SetException(errors.New("other")) {
		t.Fatal("SetException accepted an undeclared error")
	}
}

func TestAsyncCall(t *testing.T) {
	reg, _ := mustRegistry(t)
	m := reg.Lookup("pingLater")

	fut := m.CallAsync(context.Background(), &pingArgs{Token: "b"})
	select {
	case <-fut.Done():
	case <-time.After(time.Second):
		t.Fatal("future never settled")
	}
	v, err := fut.Result()
	if err != nil || v != "pong:b" {
		t.Fatalf("Result = (%v, %v), want (pong:b, nil)", v, err)
	}
}

func TestOneWayCall(t *testing.T) {
	reg, svc := mustRegistry(t)
	m := reg.Lookup("fire")

	v, err := m.Call(context.Background(), &pingArgs{Token: "c"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v != nil {
		t.Errorf("one-way Call returned %v, want nil", v)
	}
	if got := <-svc.fired; got != "c" {
		t.Errorf("fired = %q, want c", got)
	}
	if m.NewResult() != nil {
		t.Error("one-way NewResult() != nil")
	}
}

type badService struct{}

func (badService) Ping(args *pingArgs) (string, error)                     { return "", nil }
func (badService) PingLater(context.Context, *pingArgs) (string, error)    { return "", nil }
func (badService) Fire(context.Context, *pingArgs) (string, error)         { return "", nil }
func (badService) Other(context.Context, *pingArgs) (string, string, bool) { return "", "", false }

func TestRegistryRejectsBadSignatures(t *testing.T) {
	cases := []struct {
		name string
		desc ServiceDesc
	}{
		{"missing ctx", ServiceDesc{Name: "S", Methods: []MethodDesc{{
			Name: "ping", NewArgs: func() any { return new(pingArgs) },
			NewResult: func() ResultStruct { return new(pingResult) },
		}}}},
		{"oneway with result", ServiceDesc{Name: "S", Methods: []MethodDesc{{
			Name: "fire", OneWay: true, NewArgs: func() any { return new(pingArgs) },
		}}}},
		{"three results", ServiceDesc{Name: "S", Methods: []MethodDesc{{
			Name: "other", NewArgs: func() any { return new(pingArgs) },
			NewResult: func() ResultStruct { return new(pingResult) },
		}}}},
		{"unknown go method", ServiceDesc{Name: "S", Methods: []MethodDesc{{
			Name: "missing", NewArgs: func() any { return new(pingArgs) },
			NewResult: func() ResultStruct { return new(pingResult) },
		}}}},
		{"no args factory", ServiceDesc{Name: "S", Methods: []MethodDesc{{
			Name: "ping", NewResult: func() ResultStruct { return new(pingResult) },
		}}}},
		{"no result factory", ServiceDesc{Name: "S", Methods: []MethodDesc{{
			Name: "pingLater", NewArgs: func() any { return new(pingArgs) },
		}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewRegistry(tc.desc, badService{}); err == nil {
				t.Fatal("NewRegistry accepted an invalid binding")
			}
		})
	}
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	desc := testDesc()
	desc.Methods = append(desc.Methods, desc.Methods[0])
	if _, err := NewRegistry(desc, &pingService{fired: make(chan string, 1)}); err == nil {
		t.Fatal("NewRegistry accepted duplicate method names")
	}
	if _, err := NewRegistry(desc, &pingService{fired: make(chan string, 1)}); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("error = %v, want duplicate method error", err)
	}
}

func TestFutureSettlesOnce(t *testing.T) {
	fut := NewFuture()
	fut.Complete("first")
	fut.Fail(errors.New("late"))
	<-fut.Done()
	v, err := fut.Result()
	if v != "first" || err != nil {
		t.Fatalf("Result = (%v, %v), want (first, nil)", v, err)
	}
}

func TestFutureFailNilError(t *testing.T) {
	fut := NewFuture()
	fut.Fail(nil)
	<-fut.Done()
	if _, err := fut.Result(); err == nil {
		t.Fatal("Fail(nil) produced a nil error")
	}
}
