package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"homestock/internal/blob/core"
)

func TestPutGetDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.Put(ctx, "k", strings.NewReader("payload"), core.PutOptions{ContentType: "text/plain"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Put(ctx, "k", strings.NewReader("again"), core.PutOptions{}); err == nil {
		t.Fatal("duplicate put accepted")
	}

	info, rc, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "payload" || info.ContentType != "text/plain" || info.Size != 7 {
		t.Fatalf("get: %q %+v", body, info)
	}

	ok, err := s.Delete(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if ok, _ := s.Delete(ctx, "k"); ok {
		t.Fatal("second delete reported existence")
	}
}

func TestListOrdering(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, key := range []string{"z", "share/2", "share/1"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := s.List(ctx, "share/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "share/1" || infos[1].Key != "share/2" {
		t.Fatalf("list = %+v", infos)
	}
}

func TestPresignUnsupported(t *testing.T) {
	if _, err := New().PresignURL(context.Background(), "k", core.SignedURLOptions{}); err != core.ErrUnsupported {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestGetReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.Put(ctx, "k", strings.NewReader("abc"), core.PutOptions{Metadata: map[string]string{"a": "1"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	info, rc, _ := s.Get(ctx, "k")
	_ = rc.Close()
	info.Metadata["a"] = "mutated"
	again, rc2, _ := s.Get(ctx, "k")
	_ = rc2.Close()
	if again.Metadata["a"] != "1" {
		t.Fatal("metadata shared between callers")
	}
}
