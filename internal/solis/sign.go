package solis

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"
)

const (
	// signedContentType is what the Solis API expects inside the canonical
	// signing string; the request header itself declares contentType.
	signedContentType = "application/json;charset=UTF-8"
	contentType       = "application/json"
)

// SignedHeaders carries the authentication headers the Solis API requires on
// every request.
type SignedHeaders struct {
	ContentMD5    string
	Date          string
	Signature     string
	Authorization string
}

// Signer builds Solis API authentication headers from the shared key pair.
// Construct with NewSigner.
type Signer struct {
	keyID  string
	secret string
	now    func() time.Time
}

func NewSigner(keyID, secret string) *Signer {
	return &Signer{keyID: keyID, secret: secret, now: time.Now}
}

// Sign computes the headers for a POST of body to path. The output is
// deterministic for a fixed clock; only the Date header moves with wall time.
func (s *Signer) Sign(path string, body []byte) SignedHeaders {
	sum := md5.Sum(body)
	digest := base64.StdEncoding.EncodeToString(sum[:])
	date := s.now().UTC().Format(http.TimeFormat)

	canonical := "POST" + "\n" + digest + "\n" + signedContentType + "\n" + date + "\n" + path

	mac := hmac.New(sha1.New, []byte(s.secret))
	mac.Write([]byte(canonical))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return SignedHeaders{
		ContentMD5:    digest,
		Date:          date,
		Signature:     sig,
		Authorization: fmt.Sprintf("API %s:%s", s.keyID, sig),
	}
}
