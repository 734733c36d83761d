package main

import (
	"bytes"
	"strings"
	"testing"

	"couponsystem/pkg/hash"
	"couponsystem/pkg/jwt"
)

func TestRunToken(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"token", "-subject", "ops", "-ttl", "1h"}, nil, &out, "secret"); err != nil {
		t.Fatalf("run: %v", err)
	}

	claims, err := jwt.ParseToken("secret", strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Subject != "ops" || claims.Role != jwt.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRunTokenNeedsSecret(t *testing.T) {
	if err := run([]string{"token"}, nil, &bytes.Buffer{}, ""); err == nil {
		t.Fatal("expected error without a secret")
	}
}

func TestRunHashPassword(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
	}{
		{"argument", []string{"hash-password", "pw"}, ""},
		{"stdin", []string{"hash-password"}, "pw\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := run(tt.args, strings.NewReader(tt.stdin), &out, ""); err != nil {
				t.Fatalf("run: %v", err)
			}
			if !hash.CheckPassword(strings.TrimSpace(out.String()), "pw") {
				t.Fatalf("hash does not verify: %s", out.String())
			}
		})
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := run([]string{"drop-tables"}, nil, &bytes.Buffer{}, ""); err == nil {
		t.Fatal("expected error")
	}
	if err := run(nil, nil, &bytes.Buffer{}, ""); err == nil {
		t.Fatal("expected usage error")
	}
}
