package spark

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewRegistry(t *testing.T) {
	b := validSpark()
	b.ID = "attic-humidity"
	b.Title = ""

	r, err := NewRegistry([]Spark{validSpark(), b})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	if r.Count() != 2 {
		t.Errorf("Count() = %d, want 2", r.Count())
	}

	got, err := r.Get("attic-humidity")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "attic-humidity" {
		t.Errorf("Title = %q, want ID as default", got.Title)
	}

	ids := []string{}
	for _, s := range r.List() {
		ids = append(ids, s.ID)
	}
	if diff := cmp.Diff([]string{"attic-humidity", "garage-temperature"}, ids); diff != "" {
		t.Errorf("List() order mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRegistry_Errors(t *testing.T) {
	invalid := validSpark()
	invalid.Variable = ""

	tests := []struct {
		name    string
		sparks  []Spark
		wantErr error
	}{
		{"duplicate", []Spark{validSpark(), validSpark()}, ErrSparkExists},
		{"invalid", []Spark{invalid}, ErrInvalidSpark},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.sparks)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewRegistry() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegistry_GetNotFound(t *testing.T) {
	r, _ := NewRegistry(nil) //nolint:errcheck // Empty input cannot fail

	if _, err := r.Get("nope"); !errors.Is(err, ErrSparkNotFound) {
		t.Errorf("Get() error = %v, want ErrSparkNotFound", err)
	}
}
