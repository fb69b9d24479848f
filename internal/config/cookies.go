package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

const (
	authCookie = "auth"
	signCookie = "sign"
)

// Cookies splits a player token in two: the header and payload go into a
// script readable "auth" cookie, the signature into an HttpOnly "sign"
// cookie.
type Cookies struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	jwt      *JWT
}

type PlayerClaims struct {
	PlayerId int64  `json:"player_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func NewPlayerClaims(playerId int64, username string) *PlayerClaims {
	return &PlayerClaims{
		PlayerId: playerId,
		Username: username,
	}
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToUpper(s) {
	case "DEFAULT":
		return http.SameSiteDefaultMode
	case "LAX":
		return http.SameSiteLaxMode
	case "NONE":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

func NewCookies(v *viper.Viper, j *JWT) (*Cookies, error) {
	domain, ok := lookup(v, "COOKIES_DOMAIN")
	if !ok {
		return nil, fmt.Errorf("COOKIES_DOMAIN is not set")
	}

	cookies := &Cookies{
		Domain:   domain,
		Secure:   v.GetBool("COOKIES_SECURE"),
		SameSite: parseSameSite(v.GetString("COOKIES_SAMESITE")),
		jwt:      j,
	}

	return cookies, nil
}

func (c *Cookies) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Path:     "/",
		Value:    value,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
		HttpOnly: name == signCookie,
	}
}

func (c *Cookies) Clear(w http.ResponseWriter) {
	for _, name := range []string{authCookie, signCookie} {
		cookie := c.cookie(name, "delete")
		cookie.MaxAge = -1
		http.SetCookie(w, cookie)
	}
}

// Refresh signs claims with a fresh expiry and sets both cookies.
func (c *Cookies) Refresh(w http.ResponseWriter, claims *PlayerClaims) error {
	expires := time.Now().Add(c.jwt.tokenLifetime)
	claims.ExpiresAt = jwt.NewNumericDate(expires)
	claims.IssuedAt = jwt.NewNumericDate(time.Now())

	token, err := c.jwt.Sign(claims)
	if err != nil {
		return fmt.Errorf("unable to sign player claims: %w", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("malformed JWT token generated")
	}
	header, payload, signature := parts[0], parts[1], parts[2]

	auth := c.cookie(authCookie, header+"."+payload)
	auth.Expires = expires
	http.SetCookie(w, auth)

	sign := c.cookie(signCookie, signature)
	sign.Expires = expires
	http.SetCookie(w, sign)

	return nil
}

func (c *Cookies) ParsePlayerClaims(r *http.Request) (*PlayerClaims, error) {
	auth, err := r.Cookie(authCookie)
	if err != nil {
		return nil, err
	}
	sign, err := r.Cookie(signCookie)
	if err != nil {
		return nil, err
	}
	token, err := c.jwt.ParseWithClaims(
		auth.Value+"."+sign.Value, &PlayerClaims{},
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*PlayerClaims)
	if !ok {
		return nil, fmt.Errorf("malformed claims")
	}
	return claims, nil
}
