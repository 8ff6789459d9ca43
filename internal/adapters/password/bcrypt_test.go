package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcrypt_HashAndVerify(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	hash, err := h.Hash("p1")
	require.NoError(t, err)
	assert.NotEqual(t, "p1", hash)

	assert.NoError(t, h.Verify(hash, "p1"))
	assert.ErrorIs(t, h.Verify(hash, "p2"), ErrMismatch)
	assert.ErrorIs(t, h.Verify("not-a-hash", "p1"), ErrMismatch)
}
