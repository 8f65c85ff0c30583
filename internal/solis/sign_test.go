package solis

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignCanonicalString(t *testing.T) {
	fixed := time.Date(2025, time.March, 14, 9, 26, 53, 0, time.UTC)

	s := NewSigner("key-id", "top-secret")
	s.now = func() time.Time { return fixed }

	body := []byte(`{"pageNo":1,"pageSize":100}`)
	h := s.Sign("/v1/api/userStationList/", body)

	sum := md5.Sum(body)
	wantDigest := base64.StdEncoding.EncodeToString(sum[:])
	assert.Equal(t, wantDigest, h.ContentMD5)

	wantDate := fixed.Format(http.TimeFormat)
	assert.Equal(t, wantDate, h.Date)

	canonical := "POST\n" + wantDigest + "\napplication/json;charset=UTF-8\n" + wantDate + "\n/v1/api/userStationList/"
	mac := hmac.New(sha1.New, []byte("top-secret"))
	mac.Write([]byte(canonical))
	wantSig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	assert.Equal(t, wantSig, h.Signature)
	assert.Equal(t, "API key-id:"+wantSig, h.Authorization)
}

func TestSignDeterministicForFixedClock(t *testing.T) {
	fixed := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

	s := NewSigner("k", "s")
	s.now = func() time.Time { return fixed }

	body := []byte(`{"id":"1298491919448026"}`)
	first := s.Sign("/v1/api/stationMonth", body)
	second := s.Sign("/v1/api/stationMonth", body)

	assert.Equal(t, first, second)
}

func TestSignDateHeaderParses(t *testing.T) {
	s := NewSigner("k", "s")

	before := time.Now().Add(-time.Second)
	h := s.Sign("/v1/api/stationMonth", []byte("{}"))
	after := time.Now().Add(time.Second)

	parsed, err := http.ParseTime(h.Date)
	require.NoError(t, err)
	assert.False(t, parsed.Before(before.Truncate(time.Second)))
	assert.False(t, parsed.After(after))
}
