package main

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"artisanal-futures/internal/pkg/jwt"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeKeys(t *testing.T) (string, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	priv := filepath.Join(dir, "priv.pem")
	pub := filepath.Join(dir, "pub.pem")

	require.NoError(t, os.WriteFile(priv, pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), 0o600))

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(pub, pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubDER,
	}), 0o600))

	return priv, pub
}

func TestTokenIssue(t *testing.T) {
	logger = zap.NewNop()
	priv, pub := writeKeys(t)
	cfg.JWT = jwt.Config{PrivPath: priv, PubPath: pub, Issuer: "af", Audience: "web", TTL: time.Hour}
	defer func() { cfg.JWT = jwt.Config{} }()

	tokenSubject = "user-7"
	tokenEmail = "driver@example.org"
	tokenRoles = []string{"driver", " admin "}

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})

	require.NoError(t, runTokenIssue(cmd, nil))

	pubKey, err := jwt.LoadRSAPublicKeyFromPEM(pub)
	require.NoError(t, err)
	claims, err := jwt.NewVerifier(pubKey, "af", "web").Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)

	assert.Equal(t, "user-7", claims.UserID())
	assert.True(t, claims.HasRole(jwt.RoleDriver))
	assert.True(t, claims.IsAdmin())
}

func TestTokenIssueNeedsPrivateKey(t *testing.T) {
	logger = zap.NewNop()
	cfg.JWT = jwt.Config{}

	err := runTokenIssue(&cobra.Command{}, nil)
	assert.Error(t, err)
}

func TestRootRegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"categories", "passcode", "routes", "token"} {
		assert.True(t, names[want], want)
	}
}
