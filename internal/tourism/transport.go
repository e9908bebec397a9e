package tourism

import (
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const pinPrefix = "sha256/"

// newPinnedTransport clones the default transport and, when pins are given,
// rejects any TLS connection whose verified chains have no matching SPKI hash.
// Certificates the server sent but that did not verify are never consulted.
func newPinnedTransport(pins []string) (*http.Transport, error) {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if len(pins) == 0 {
		return t, nil
	}

	allowed, err := parsePins(pins)
	if err != nil {
		return nil, err
	}

	t.TLSClientConfig = &tls.Config{
		MinVersion: tls.VersionTLS12,
		VerifyConnection: func(cs tls.ConnectionState) error {
			return verifyPins(cs.VerifiedChains, allowed)
		},
	}
	return t, nil
}

func parsePins(pins []string) (map[string]struct{}, error) {
	allowed := make(map[string]struct{}, len(pins))
	for _, p := range pins {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		raw, ok := strings.CutPrefix(p, pinPrefix)
		if !ok {
			return nil, fmt.Errorf("pin %q: missing %s prefix", p, pinPrefix)
		}
		sum, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("pin %q: %w", p, err)
		}
		if len(sum) != sha256.Size {
			return nil, fmt.Errorf("pin %q: want %d bytes, got %d", p, sha256.Size, len(sum))
		}
		allowed[raw] = struct{}{}
	}
	if len(allowed) == 0 {
		return nil, errors.New("no usable certificate pins")
	}
	return allowed, nil
}

// verifyPins accepts when any certificate of any verified chain carries an
// allowed pin.
func verifyPins(chains [][]*x509.Certificate, allowed map[string]struct{}) error {
	for _, chain := range chains {
		for _, cert := range chain {
			if _, ok := allowed[spkiPin(cert)]; ok {
				return nil
			}
		}
	}
	return errors.New("certificate pinning failure: no pin matched the verified chain")
}

func spkiPin(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.RawSubjectPublicKeyInfo)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// loggingTransport logs every outgoing request at debug level.
type loggingTransport struct {
	next http.RoundTripper
	log  *slog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.log.Debug("http request failed",
			"method", req.Method, "url", req.URL.String(),
			"duration", time.Since(start), "err", err)
		return nil, err
	}
	t.log.Debug("http request",
		"method", req.Method, "url", req.URL.String(),
		"status", resp.StatusCode, "duration", time.Since(start))
	return resp, nil
}
