package kalshi

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/brabsmit/sportsbook-arb/internal/errkind"
)

// LoadPrivateKey reads a PEM-encoded RSA private key from disk, accepting
// either PKCS8 (the format Kalshi's key generation tooling produces) or
// PKCS1.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errkind.Wrap(errkind.Fatal, "reading private key", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errkind.New(errkind.Fatal, "no PEM block found in "+path)
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, errkind.New(errkind.Fatal, "private key is not RSA")
		}
		return rsaKey, nil
	}

	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, errkind.Wrap(errkind.Fatal, "parsing private key (tried PKCS8 and PKCS1)", err)
	}
	return rsaKey, nil
}

// Sign produces the base64 RSA-PSS-SHA256 signature Kalshi requires over
// timestamp||method||path.
func Sign(privateKey *rsa.PrivateKey, timestampMS, method, path string) (string, error) {
	message := timestampMS + method + path
	hash := sha256.Sum256([]byte(message))

	sig, err := rsa.SignPSS(rand.Reader, privateKey, crypto.SHA256, hash[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
	})
	if err != nil {
		return "", errkind.Wrap(errkind.Credentials, "signing request", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// AuthHeaders builds the KEY/SIGNATURE/TIMESTAMP header triple for one
// request.
func AuthHeaders(apiKeyID string, privateKey *rsa.PrivateKey, method, fullPath string) (map[string]string, error) {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)

	sig, err := Sign(privateKey, ts, method, fullPath)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"KALSHI-ACCESS-KEY":       apiKeyID,
		"KALSHI-ACCESS-TIMESTAMP": ts,
		"KALSHI-ACCESS-SIGNATURE": sig,
	}, nil
}

// WSAuthHeaderFunc builds the function Feed uses to sign each WebSocket
// dial: a thin adapter from AuthHeaders' map shape to http.Header.
func WSAuthHeaderFunc(apiKeyID string, privateKey *rsa.PrivateKey, basePathPrefix string) func(method, path string) (http.Header, error) {
	return func(method, path string) (http.Header, error) {
		headers, err := AuthHeaders(apiKeyID, privateKey, method, basePathPrefix+path)
		if err != nil {
			return nil, err
		}
		h := http.Header{}
		for k, v := range headers {
			h.Set(k, v)
		}
		return h, nil
	}
}
