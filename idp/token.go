package idp

import (
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-bff-auth/internal/utils"
)

// TokenResult carries the fields of a token response the auth flow
// consumes. The raw access and ID tokens are used in-request for claim
// extraction and userinfo; they are never persisted.
type TokenResult struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	Scope        string
	ExpiresAt    *int64 // unix seconds, nil when the provider omits expiry
}

func newTokenResult(token *oauth2.Token) *TokenResult {
	idToken, _ := token.Extra("id_token").(string)
	scope, _ := token.Extra("scope").(string)

	result := &TokenResult{
		AccessToken:  token.AccessToken,
		IDToken:      idToken,
		RefreshToken: token.RefreshToken,
		Scope:        scope,
	}
	if !token.Expiry.IsZero() {
		result.ExpiresAt = utils.Ptr(token.Expiry.Unix())
	}
	return result
}
