package hmac

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSignVerify_RoundTrip(t *testing.T) {
	s, err := NewHMACSigner([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	payload := []byte("0199a1c2-7b3e-7c00-8000-000000000001")

	token, err := s.Sign(payload)
	if err != nil {
		t.Fatal(err)
	}
	if strings.ContainsAny(token, "/+=") {
		t.Errorf("token %q is not URL safe", token)
	}

	got, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload = %q, want %q", got, payload)
	}
}

func TestVerify_Rejects(t *testing.T) {
	s, _ := NewHMACSigner([]byte("secret"))
	other, _ := NewHMACSigner([]byte("other"))
	token, _ := s.Sign([]byte("payload"))
	foreign, _ := other.Sign([]byte("payload"))
	payload, sig, _ := strings.Cut(token, ".")

	for name, tok := range map[string]string{
		"empty":         "",
		"no separator":  payload,
		"extra segment": token + ".x",
		"bad signature": payload + ".AAAA",
		"bad base64":    payload + ".!!",
		"other key":     foreign,
		"payload swap":  "cGF5bG9hZTI." + sig,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Verify(tok); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify(%q) err = %v, want ErrInvalidToken", tok, err)
			}
		})
	}
}

func TestNewHMACSigner_MissingKey(t *testing.T) {
	if _, err := NewHMACSigner(nil); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("err = %v, want ErrMissingKey", err)
	}
}
