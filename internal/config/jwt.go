package config

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

type JWT struct {
	publicKey     *rsa.PublicKey
	privateKey    *rsa.PrivateKey
	signingMethod jwt.SigningMethod
	tokenLifetime time.Duration
}

// loadPEM reads key, falling back to the file named by key_FILE.
func loadPEM(v *viper.Viper, key string) ([]byte, error) {
	pem, ok := lookup(v, key)
	if ok {
		return []byte(pem), nil
	}
	path, ok := lookup(v, key+"_FILE")
	if !ok {
		return nil, fmt.Errorf("no %s or %s_FILE set", key, key)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}
	return b, nil
}

func NewJWT(v *viper.Viper) (*JWT, error) {
	privatePEM, err := loadPEM(v, "JWT_PRIVATE_KEY")
	if err != nil {
		return nil, err
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("unable to parse JWT private key: %w", err)
	}

	publicPEM, err := loadPEM(v, "JWT_PUBLIC_KEY")
	if err != nil {
		return nil, err
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("unable to parse JWT public key: %w", err)
	}

	lifetime := v.GetDuration("JWT_TOKEN_LIFETIME")
	if lifetime <= 0 {
		return nil, fmt.Errorf("JWT_TOKEN_LIFETIME must be positive, got %s", lifetime)
	}

	j := &JWT{
		privateKey:    privateKey,
		publicKey:     publicKey,
		signingMethod: jwt.SigningMethodRS256,
		tokenLifetime: lifetime,
	}

	return j, nil
}

func (j *JWT) Sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(j.signingMethod, claims).SignedString(j.privateKey)
}

func (j *JWT) ParseWithClaims(tokenString string, claims jwt.Claims) (*jwt.Token, error) {
	return jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) {
			return j.publicKey, nil
		},
		jwt.WithValidMethods([]string{j.signingMethod.Alg()}),
	)
}

func (j *JWT) TokenLifetime() time.Duration {
	return j.tokenLifetime
}
