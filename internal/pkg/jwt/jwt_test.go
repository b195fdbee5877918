package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeyPair(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key, &key.PublicKey
}

func TestGenerateAndVerify(t *testing.T) {
	priv, pub := newKeyPair(t)
	gen := NewGenerator(priv, "af", "web", "k1", time.Hour)
	ver := NewVerifier(pub, "af", "web")

	token, jti, err := gen.Generate("user_1", "a@b.com", []string{RoleAdmin})
	require.NoError(t, err)
	assert.NotEmpty(t, jti)

	claims, err := ver.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", claims.UserID())
	assert.Equal(t, "a@b.com", claims.Email)
	assert.True(t, claims.IsAdmin())
	assert.False(t, claims.HasRole(RoleDriver))
	assert.Equal(t, jti, claims.ID)
}

func TestVerifyRejectsWrongAudienceAndIssuer(t *testing.T) {
	priv, pub := newKeyPair(t)

	token, _, err := NewGenerator(priv, "af", "mobile", "", time.Hour).Generate("user_1", "", nil)
	require.NoError(t, err)
	_, err = NewVerifier(pub, "af", "web").Verify(token)
	assert.Error(t, err)

	token, _, err = NewGenerator(priv, "other", "web", "", time.Hour).Generate("user_1", "", nil)
	require.NoError(t, err)
	_, err = NewVerifier(pub, "af", "web").Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsForeignKeyAndExpiry(t *testing.T) {
	priv, _ := newKeyPair(t)
	_, otherPub := newKeyPair(t)

	token, _, err := NewGenerator(priv, "af", "web", "", time.Hour).Generate("user_1", "", nil)
	require.NoError(t, err)
	_, err = NewVerifier(otherPub, "af", "web").Verify(token)
	assert.Error(t, err)

	expired, _, err := NewGenerator(priv, "af", "web", "", -time.Minute).Generate("user_1", "", nil)
	require.NoError(t, err)
	_, err = NewVerifier(&priv.PublicKey, "af", "web").Verify(expired)
	assert.Error(t, err)
}

func TestParseKeys(t *testing.T) {
	priv, pub := newKeyPair(t)

	pkcs8, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	parsedPriv, err := ParseRSAPrivateKey(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8}))
	require.NoError(t, err)
	assert.True(t, priv.Equal(parsedPriv))

	pkix, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)
	parsedPub, err := ParseRSAPublicKey(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pkix}))
	require.NoError(t, err)
	assert.True(t, pub.Equal(parsedPub))

	_, err = ParseRSAPublicKey([]byte("not pem"))
	assert.Error(t, err)
}
