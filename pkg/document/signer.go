package document

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/presu/presu/internal/utils"
)

var ErrLinkExpired = errors.New("download link expired")
var ErrInvalidSignature = errors.New("invalid download signature")

const linkValidity = time.Hour

// URLSigner produces and verifies time-limited download links. The signature
// is an HMAC-SHA256 over the document id and the expiry timestamp, so a link
// cannot be replayed for another document or extended by the client.
type URLSigner struct {
	secret []byte
	clock  utils.Clock
}

func NewURLSigner(secret string, clock utils.Clock) *URLSigner {
	return &URLSigner{secret: []byte(secret), clock: clock}
}

// Sign returns the expiry unix timestamp and the hex signature for a
// download of the given document, valid for one hour.
func (s *URLSigner) Sign(id string) (expires int64, signature string) {
	expires = s.clock.Now().Add(linkValidity).Unix()
	return expires, s.signature(id, expires)
}

// Verify checks a presented expiry and signature against the document id.
func (s *URLSigner) Verify(id string, expires int64, signature string) error {
	if s.clock.Now().Unix() > expires {
		return ErrLinkExpired
	}
	expected := s.signature(id, expires)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

func (s *URLSigner) signature(id string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%d", id, expires)
	return hex.EncodeToString(mac.Sum(nil))
}
