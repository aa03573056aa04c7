package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"golang.org/x/oauth2"
)

const (
	AppleIssuer   = "https://appleid.apple.com"
	AppleKeysURL  = "https://appleid.apple.com/auth/keys"
	AppleAuthURL  = "https://appleid.apple.com/auth/authorize"
	AppleTokenURL = "https://appleid.apple.com/auth/token"

	clientSecretTTL = 5 * time.Minute
)

var (
	ErrAppleExchangeNotConfigured = errors.New("apple code exchange requires team id, key id and private key")
	ErrAppleIDTokenMissing        = errors.New("apple token response carries no id_token")
	ErrAppleSubjectMissing        = errors.New("apple identity token has no subject")
)

type AppleService interface {
	// VerifyIDToken validates signature, issuer, audience and expiry of an identity token.
	VerifyIDToken(ctx context.Context, idToken string) (AppleIdentity, error)
	// ExchangeCode trades an authorization code for tokens and verifies the returned identity token.
	ExchangeCode(ctx context.Context, code string) (AppleIdentity, error)
}

type AppleConfig struct {
	ClientID      string // Services ID or bundle ID, the id_token audience
	TeamID        string
	KeyID         string
	PrivateKeyPEM []byte // contents of the .p8 key; optional when only id_tokens are verified
	RedirectURL   string

	// Overridable endpoints, default to Apple's
	Issuer   string
	KeysURL  string
	AuthURL  string
	TokenURL string
}

type AppleIdentity struct {
	Subject        string
	Email          string
	EmailVerified  bool
	IsPrivateEmail bool
}

type AppleServiceImpl struct {
	cfg        AppleConfig
	keys       *jwk.Cache
	signingKey jwk.Key
	oauth      *oauth2.Config
}

// NewAppleService registers Apple's key set in a refreshing cache bound to ctx.
func NewAppleService(ctx context.Context, cfg AppleConfig) (AppleService, error) {
	if cfg.Issuer == "" {
		cfg.Issuer = AppleIssuer
	}
	if cfg.KeysURL == "" {
		cfg.KeysURL = AppleKeysURL
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = AppleAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = AppleTokenURL
	}

	cache := jwk.NewCache(ctx)
	if err := cache.Register(cfg.KeysURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, fmt.Errorf("register apple key set: %w", err)
	}

	svc := &AppleServiceImpl{
		cfg:  cfg,
		keys: cache,
		oauth: &oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.RedirectURL,
			Scopes:      []string{"name", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}

	if len(cfg.PrivateKeyPEM) > 0 {
		key, err := jwk.ParseKey(cfg.PrivateKeyPEM, jwk.WithPEM(true))
		if err != nil {
			return nil, fmt.Errorf("parse apple private key: %w", err)
		}
		if err := key.Set(jwk.KeyIDKey, cfg.KeyID); err != nil {
			return nil, err
		}
		svc.signingKey = key
	}

	return svc, nil
}

func (a *AppleServiceImpl) VerifyIDToken(ctx context.Context, idToken string) (AppleIdentity, error) {
	set, err := a.keys.Get(ctx, a.cfg.KeysURL)
	if err != nil {
		return AppleIdentity{}, fmt.Errorf("fetch apple keys: %w", err)
	}

	token, err := jwt.Parse([]byte(idToken),
		jwt.WithKeySet(set, jws.WithInferAlgorithmFromKey(true)),
		jwt.WithValidate(true),
		jwt.WithIssuer(a.cfg.Issuer),
		jwt.WithAudience(a.cfg.ClientID),
		jwt.WithAcceptableSkew(30*time.Second),
	)
	if err != nil {
		return AppleIdentity{}, err
	}

	identity := AppleIdentity{Subject: token.Subject()}
	if identity.Subject == "" {
		return AppleIdentity{}, ErrAppleSubjectMissing
	}
	if v, ok := token.Get("email"); ok {
		identity.Email, _ = v.(string)
	}
	if v, ok := token.Get("email_verified"); ok {
		identity.EmailVerified = claimBool(v)
	}
	if v, ok := token.Get("is_private_email"); ok {
		identity.IsPrivateEmail = claimBool(v)
	}

	return identity, nil
}

func (a *AppleServiceImpl) ExchangeCode(ctx context.Context, code string) (AppleIdentity, error) {
	if a.signingKey == nil || a.cfg.TeamID == "" {
		return AppleIdentity{}, ErrAppleExchangeNotConfigured
	}

	secret, err := a.clientSecret(time.Now())
	if err != nil {
		return AppleIdentity{}, fmt.Errorf("build apple client secret: %w", err)
	}

	conf := *a.oauth
	conf.ClientSecret = secret

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return AppleIdentity{}, err
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return AppleIdentity{}, ErrAppleIDTokenMissing
	}

	return a.VerifyIDToken(ctx, idToken)
}

// clientSecret signs the short-lived ES256 JWT Apple expects as client_secret.
func (a *AppleServiceImpl) clientSecret(now time.Time) (string, error) {
	token, err := jwt.NewBuilder().
		Issuer(a.cfg.TeamID).
		Subject(a.cfg.ClientID).
		Audience([]string{a.cfg.Issuer}).
		IssuedAt(now).
		Expiration(now.Add(clientSecretTTL)).
		Build()
	if err != nil {
		return "", err
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256, a.signingKey))
	if err != nil {
		return "", err
	}
	return string(signed), nil
}

// Apple sends booleans either as JSON booleans or as "true"/"false" strings.
func claimBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true")
	default:
		return false
	}
}
