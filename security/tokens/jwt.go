/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tokens

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken wraps every validation failure.
var ErrInvalidToken = errors.New("invalid access token")

var signingMethod = gojwt.SigningMethodHS256

// Generator issues access tokens.
type Generator struct {
	expires time.Duration
	key     []byte
	now     func() time.Time
}

// NewGenerator returns a generator whose tokens expire after expiresMinutes.
func NewGenerator(expiresMinutes uint32, signingKey string) (*Generator, error) {
	if signingKey == "" {
		return nil, errors.New("tokens: signing key is empty")
	}
	return &Generator{
		expires: time.Duration(expiresMinutes) * time.Minute,
		key:     []byte(signingKey),
		now:     time.Now,
	}, nil
}

// Generate returns a signed token for userIdentifier.
func (g *Generator) Generate(userIdentifier uuid.UUID) (string, error) {
	now := g.now()
	claims := gojwt.RegisteredClaims{
		Subject:   userIdentifier.String(),
		IssuedAt:  gojwt.NewNumericDate(now),
		NotBefore: gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(g.expires)),
	}
	signed, err := gojwt.NewWithClaims(signingMethod, claims).SignedString(g.key)
	if err != nil {
		return "", fmt.Errorf("tokens: sign token: %w", err)
	}
	return signed, nil
}

// Validator checks tokens issued by a Generator with the same key.
type Validator struct {
	key     []byte
	options []gojwt.ParserOption
}

func NewValidator(signingKey string) *Validator {
	return &Validator{
		key: []byte(signingKey),
		options: []gojwt.ParserOption{
			gojwt.WithValidMethods([]string{signingMethod.Alg()}),
			gojwt.WithExpirationRequired(),
			gojwt.WithLeeway(0),
		},
	}
}

// ValidateAndGetUserIdentifier verifies signature and expiry and returns the
// user identifier carried in the subject.
func (v *Validator) ValidateAndGetUserIdentifier(token string) (uuid.UUID, error) {
	claims := &gojwt.RegisteredClaims{}
	_, err := gojwt.ParseWithClaims(token, claims, func(*gojwt.Token) (interface{}, error) {
		return v.key, nil
	}, v.options...)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not a user identifier", ErrInvalidToken)
	}
	return id, nil
}
