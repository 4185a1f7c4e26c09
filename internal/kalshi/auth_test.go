package kalshi

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
)

func writeTestKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating test key: %v", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshaling test key: %v", err)
	}
	block := &pem.Block{Type: "PRIVATE KEY", Bytes: der}

	path := filepath.Join(t.TempDir(), "key.pem")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatalf("writing test key: %v", err)
	}
	return key, path
}

func TestLoadPrivateKeyPKCS8(t *testing.T) {
	want, path := writeTestKey(t)
	got, err := LoadPrivateKey(path)
	if err != nil {
		t.Fatalf("LoadPrivateKey: %v", err)
	}
	if got.N.Cmp(want.N) != 0 {
		t.Error("loaded key does not match written key")
	}
}

func TestLoadPrivateKeyMissingFile(t *testing.T) {
	if _, err := LoadPrivateKey("/nonexistent/path.pem"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadPrivateKeyInvalidPEM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pem")
	if err := os.WriteFile(path, []byte("not a pem file"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPrivateKey(path); err == nil {
		t.Fatal("expected error for invalid PEM")
	}
}

func TestSignIsDeterministicLengthAndVerifiable(t *testing.T) {
	key, _ := writeTestKey(t)
	sig, err := Sign(key, "1690000000000", "GET", "/trade-api/v2/portfolio/balance")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if sig == "" {
		t.Fatal("expected non-empty signature")
	}
	raw, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		t.Fatalf("signature is not base64: %v", err)
	}
	if len(raw) != key.Size() {
		t.Errorf("signature length = %d, want %d", len(raw), key.Size())
	}
	hash := sha256.Sum256([]byte("1690000000000" + "GET" + "/trade-api/v2/portfolio/balance"))
	if err := rsa.VerifyPSS(&key.PublicKey, crypto.SHA256, hash[:], raw, &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash}); err != nil {
		t.Errorf("signature does not verify: %v", err)
	}
}

func TestAuthHeadersContainsExpectedKeys(t *testing.T) {
	key, _ := writeTestKey(t)
	headers, err := AuthHeaders("my-key-id", key, "GET", "/trade-api/v2/markets")
	if err != nil {
		t.Fatalf("AuthHeaders: %v", err)
	}
	for _, h := range []string{"KALSHI-ACCESS-KEY", "KALSHI-ACCESS-TIMESTAMP", "KALSHI-ACCESS-SIGNATURE"} {
		if headers[h] == "" {
			t.Errorf("missing header %s", h)
		}
	}
	if headers["KALSHI-ACCESS-KEY"] != "my-key-id" {
		t.Errorf("KALSHI-ACCESS-KEY = %q, want my-key-id", headers["KALSHI-ACCESS-KEY"])
	}
}

func TestWSAuthHeaderFunc(t *testing.T) {
	key, _ := writeTestKey(t)
	fn := WSAuthHeaderFunc("my-key-id", key, "/trade-api/v2")
	h, err := fn("GET", "/ws")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Get("KALSHI-ACCESS-KEY") != "my-key-id" {
		t.Errorf("missing signed key header: %v", h)
	}
}
