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

package cryptography

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordEncrypter hashes passwords for the Users.Password column.
type PasswordEncrypter interface {
	Encrypt(password string) (string, error)
	IsValid(password, hash string) bool
}

// BCrypt implements PasswordEncrypter with bcrypt.
type BCrypt struct {
	cost int
}

var _ PasswordEncrypter = (*BCrypt)(nil)

// NewBCrypt returns an encrypter using cost, or bcrypt.DefaultCost when cost
// is out of range.
func NewBCrypt(cost int) *BCrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BCrypt{cost: cost}
}

func (b *BCrypt) Encrypt(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("cryptography: hash password: %w", err)
	}
	return string(hash), nil
}

func (b *BCrypt) IsValid(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
