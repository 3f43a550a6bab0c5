package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSignToken(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	sub := uuid.NewString()
	signed, err := signToken(string(privPEM), sub, time.Hour, time.Now())
	require.NoError(t, err)

	var claims jwt.RegisteredClaims
	_, err = jwt.ParseWithClaims(signed, &claims, func(*jwt.Token) (any, error) { return &priv.PublicKey, nil },
		jwt.WithValidMethods([]string{"RS256"}))
	require.NoError(t, err)
	require.Equal(t, sub, claims.Subject)

	_, err = signToken(string(privPEM), "not-a-uuid", time.Hour, time.Now())
	require.Error(t, err)

	_, err = signToken("garbage", sub, time.Hour, time.Now())
	require.Error(t, err)
}

func TestConfigArgs(t *testing.T) {
	require.Equal(t, []string{"-c", "a.yml"}, configArgs([]string{"serve", "-c", "a.yml"}))
	require.Equal(t, []string{"-c", "b.yml"}, configArgs([]string{"--config=b.yml", "serve"}))
	require.Nil(t, configArgs([]string{"serve"}))
}
