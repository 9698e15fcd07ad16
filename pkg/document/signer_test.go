package document

import (
	"testing"
	"time"

	"github.com/presu/presu/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLSigner(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("accepts a fresh signature", func(t *testing.T) {
		// given
		clock := &utils.MockClock{FixedNow: now}
		signer := NewURLSigner("secret", clock)

		// when
		expires, signature := signer.Sign("doc-1")

		// then
		assert.Equal(t, now.Add(time.Hour).Unix(), expires)
		assert.NoError(t, signer.Verify("doc-1", expires, signature))
	})

	t.Run("rejects an expired link", func(t *testing.T) {
		// given
		clock := &utils.MockClock{FixedNow: now}
		signer := NewURLSigner("secret", clock)
		expires, signature := signer.Sign("doc-1")

		// when
		clock.SetNow(now.Add(time.Hour + time.Second))

		// then
		assert.ErrorIs(t, signer.Verify("doc-1", expires, signature), ErrLinkExpired)
	})

	t.Run("rejects a signature for another document", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: now}
		signer := NewURLSigner("secret", clock)
		expires, signature := signer.Sign("doc-1")

		assert.ErrorIs(t, signer.Verify("doc-2", expires, signature), ErrInvalidSignature)
	})

	t.Run("rejects a client-extended expiry", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: now}
		signer := NewURLSigner("secret", clock)
		expires, signature := signer.Sign("doc-1")

		require.NoError(t, signer.Verify("doc-1", expires, signature))
		assert.ErrorIs(t, signer.Verify("doc-1", expires+3600, signature), ErrInvalidSignature)
	})
}
