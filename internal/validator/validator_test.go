package validator

import (
	"strings"
	"testing"
)

type sample struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestValidate(t *testing.T) {
	v := New()

	if err := v.Validate(sample{Email: "user@example.com", Password: "Password123"}); err != nil {
		t.Fatalf("valid struct: %v", err)
	}

	err := v.Validate(sample{Email: "not-an-email", Password: "short"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "email must be a valid email address") {
		t.Errorf("missing email message: %q", msg)
	}
	if !strings.Contains(msg, "password must be at least 8 characters") {
		t.Errorf("missing password message: %q", msg)
	}
}

func TestValidateUsesJSONNames(t *testing.T) {
	v := New()
	err := v.Validate(struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "refreshToken is required") {
		t.Errorf("want json field name in message, got %q", err.Error())
	}
}
