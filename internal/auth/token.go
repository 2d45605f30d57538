package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

const (
	// TokenTTL is how long an issued token is accepted.
	TokenTTL = 24 * time.Hour

	// clockSkew is how far in the future a token timestamp may lie.
	clockSkew = time.Minute

	signedPrefix = "authenticated:"
)

func sign(secret []byte, timestamp string) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signedPrefix + timestamp))
	return mac.Sum(nil)
}

func generateAuthToken(secret []byte, issuedAt time.Time) string {
	ts := strconv.FormatInt(issuedAt.UnixMilli(), 10)
	return ts + "." + hex.EncodeToString(sign(secret, ts))
}

func isValidAuthToken(token string, secret []byte, now time.Time) bool {
	ts, signature, ok := strings.Cut(token, ".")
	if !ok || ts == "" || signature == "" {
		return false
	}

	millis, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}
	issuedAt := time.UnixMilli(millis)
	if now.Sub(issuedAt) > TokenTTL || issuedAt.Sub(now) > clockSkew {
		return false
	}

	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(got, sign(secret, ts))
}
