package validation

import (
	"errors"
	"testing"

	"github.com/graduation-masterpiece/demo-repository/internal/platform/apierr"
)

type sample struct {
	ISBN  string `json:"isbn" validate:"required,max=8"`
	Cover string `json:"book_cover" validate:"omitempty,url"`
	Kind  string `json:"kind" validate:"omitempty,oneof=a b"`
}

func TestValidateUsesJSONNames(t *testing.T) {
	v := New()
	err := v.Validate(sample{Cover: "not a url", Kind: "c"})
	if !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	details := apierr.As(err).Details
	want := map[string]string{
		"isbn":       "is required",
		"book_cover": "must be a valid URL",
		"kind":       "must be one of: a b",
	}
	for field, msg := range want {
		if details[field] != msg {
			t.Errorf("details[%q] = %q, want %q", field, details[field], msg)
		}
	}
}

func TestValidateOK(t *testing.T) {
	if err := New().Validate(sample{ISBN: "978-1", Cover: "https://img.test/c.png"}); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
