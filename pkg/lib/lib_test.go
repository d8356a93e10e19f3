package lib

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestTypedUID(t *testing.T) {
	uid := NewTypedUID("match", "Primeira Liga", "FC Porto", "SC Braga", "2021-03-01")
	if got, want := uid.String(), "match:primeira-liga:fc-porto:sc-braga:2021-03-01"; got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}

	data, err := json.Marshal(uid)
	if err != nil {
		t.Fatal(err)
	}
	var decoded TypedUID
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if !decoded.Equal(uid) || decoded.Type != "match" {
		t.Errorf("decoded = %+v", decoded)
	}

	if _, err := NewTypedUIDFromString("nocolon"); err == nil {
		t.Error("expected error for uid without identifiers")
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"FC Porto":            "fc-porto",
		"  Atlético  Madrid ": "atlético-madrid",
		"Paris Saint-Germain": "paris-saint-germain",
		"Round of 16!":        "round-of-16",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCache_GetOrCreate(t *testing.T) {
	logger := zerolog.Nop()
	cache := NewCache[string, int](time.Minute, &logger)

	calls := 0
	create := func() (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := cache.GetOrCreate("k", create)
		if err != nil || v != 42 {
			t.Fatalf("GetOrCreate() = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := cache.GetOrCreate("bad", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("error = %v", err)
	}
	if _, ok := cache.Get("bad"); ok {
		t.Error("failed creation was cached")
	}
}

func TestValidateStruct(t *testing.T) {
	type target struct {
		URL  string `validate:"required,feedurl"`
		Name string `validate:"required"`
	}

	if err := ValidateStruct(target{URL: "https://x.blogspot.com", Name: "x"}); err != nil {
		t.Errorf("valid struct error = %v", err)
	}
	if err := ValidateStruct(target{URL: "file:///tmp/feed.html", Name: "x"}); err != nil {
		t.Errorf("file url error = %v", err)
	}

	err := ValidateStruct(target{URL: "ftp://x"})
	var ve ValidationErrors
	if !errors.As(err, &ve) || len(ve.Errors) != 2 {
		t.Fatalf("error = %v, want two validation errors", err)
	}
}
