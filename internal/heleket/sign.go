package heleket

import (
	"crypto/md5" //nolint:gosec
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
)

var (
	ErrMissingSignature = errors.New("missing heleket signature")
	ErrInvalidSignature = errors.New("invalid heleket signature")
)

// Sign computes md5(base64(body) + apiKey), the signature Heleket expects
// on requests and sends on webhooks.
func Sign(body []byte, apiKey string) string {
	sum := md5.Sum([]byte(base64.StdEncoding.EncodeToString(body) + apiKey)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

var signMemberPattern = regexp.MustCompile(`"sign"\s*:\s*"([0-9a-fA-F]*)"`)

// VerifyWebhook checks the sign member of a webhook body. The sign is
// computed over the exact JSON the gateway sent with that member removed.
func VerifyWebhook(body []byte, apiKey string) error {
	unsigned, sign, ok := stripSign(body)
	if !ok || sign == "" {
		return ErrMissingSignature
	}

	expected := Sign(unsigned, apiKey)
	if subtle.ConstantTimeCompare([]byte(strings.ToLower(sign)), []byte(expected)) != 1 {
		return ErrInvalidSignature
	}
	return nil
}

func stripSign(body []byte) ([]byte, string, bool) {
	loc := signMemberPattern.FindSubmatchIndex(body)
	if loc == nil {
		return nil, "", false
	}
	sign := string(body[loc[2]:loc[3]])
	start, end := loc[0], loc[1]

	// Take the separating comma with the member: the preceding one when the
	// member is last, the following one otherwise.
	before := skipSpaceBackward(body, start)
	after := skipSpaceForward(body, end)
	switch {
	case after < len(body) && body[after] == ',':
		end = skipSpaceForward(body, after+1)
	case before > 0 && body[before-1] == ',':
		start = before - 1
	}

	unsigned := make([]byte, 0, len(body)-(end-start))
	unsigned = append(unsigned, body[:start]...)
	unsigned = append(unsigned, body[end:]...)
	return unsigned, sign, true
}

func skipSpaceBackward(body []byte, i int) int {
	for i > 0 && isSpace(body[i-1]) {
		i--
	}
	return i
}

func skipSpaceForward(body []byte, i int) int {
	for i < len(body) && isSpace(body[i]) {
		i++
	}
	return i
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\r' || b == '\t'
}
