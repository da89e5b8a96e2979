package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"refcore/internal/infra/blob/core"
)

func TestMemoryStorePutGetRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	info, err := s.Put(ctx, "records/NC_003355.1.json", strings.NewReader(`{"length":7424}`), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"accession": "NC_003355"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 16 {
		t.Fatalf("size = %d, want 16", info.Size)
	}

	got, body, err := s.Get(ctx, "records/NC_003355.1.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = body.Close() }()
	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"length":7424}` {
		t.Fatalf("content = %s", data)
	}
	if got.ContentType != "application/json" || got.Metadata["accession"] != "NC_003355" {
		t.Fatalf("metadata lost: %+v", got)
	}
}

func TestMemoryStorePutOverwrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Put(ctx, "k", strings.NewReader("one"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Put(ctx, "k", strings.NewReader("two"), core.PutOptions{}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	_, body, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(body)
	_ = body.Close()
	if string(data) != "two" {
		t.Fatalf("content = %s, want two", data)
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := New()
	if _, _, err := s.Get(context.Background(), "absent"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Head(context.Background(), "absent"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Put(ctx, "k", strings.NewReader("x"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	existed, err := s.Delete(ctx, "k")
	if err != nil || !existed {
		t.Fatalf("delete = (%v, %v), want (true, nil)", existed, err)
	}
	existed, err = s.Delete(ctx, "k")
	if err != nil || existed {
		t.Fatalf("second delete = (%v, %v), want (false, nil)", existed, err)
	}
}

func TestMemoryStoreListByPrefix(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, k := range []string{"records/b.json", "records/a.json", "other/c.json"} {
		if _, err := s.Put(ctx, k, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	infos, err := s.List(ctx, "records/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(infos))
	}
	if infos[0].Key != "records/a.json" || infos[1].Key != "records/b.json" {
		t.Fatalf("listing not sorted: %v", infos)
	}
}
