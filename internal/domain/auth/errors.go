package auth

import "errors"

var (
	ErrInvalidCredentials         = errors.New("invalid email or password")
	ErrInvalidToken               = errors.New("invalid or expired token")
	ErrTokenExpired               = errors.New("token has expired")
	ErrRefreshTokenRevoked        = errors.New("refresh token has been revoked")
	ErrRefreshTokenCookieNotFound = errors.New("refresh token cookie not found")
	ErrRefreshTokenCookieEmpty    = errors.New("refresh token cookie is empty")
	ErrInvalidAppleToken          = errors.New("invalid apple identity token")
	ErrAppleCodeExchange          = errors.New("failed to exchange apple authorization code")
	ErrAppleEmailMissing          = errors.New("apple identity token carries no email")
	ErrAppleEmailUnverified       = errors.New("apple identity token email is not verified")
)
