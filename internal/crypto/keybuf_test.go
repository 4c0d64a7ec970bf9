/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package crypto

import (
	"bytes"
	"testing"
)

func TestHoldKey_TakesOwnership(t *testing.T) {
	key := []byte{0xde, 0xad, 0xbe, 0xef}
	want := append([]byte(nil), key...)

	kb := HoldKey(key)
	defer kb.Wipe()

	if !bytes.Equal(kb.Bytes(), want) {
		t.Error("buffer does not hold the key bytes")
	}
	if kb.Len() != len(want) {
		t.Errorf("Len() = %d, want %d", kb.Len(), len(want))
	}

	// The source must be gone: the buffer is now the only live copy.
	for i, b := range key {
		if b != 0 {
			t.Errorf("source key byte %d not wiped by HoldKey", i)
		}
	}
}

func TestHoldSalt_LeavesSourceIntact(t *testing.T) {
	salt := []byte("0123456789abcdef")
	want := append([]byte(nil), salt...)

	kb := HoldSalt(salt)
	defer kb.Wipe()

	if !bytes.Equal(kb.Bytes(), want) {
		t.Error("buffer does not hold the salt bytes")
	}
	if !bytes.Equal(salt, want) {
		t.Error("HoldSalt wiped the caller's salt")
	}

	// Mutating the caller's salt must not reach the held copy.
	salt[0] = 'X'
	if kb.Bytes()[0] == 'X' {
		t.Error("buffer aliases the caller's slice")
	}
}

func TestKeyBuffer_Wipe(t *testing.T) {
	kb := HoldKey([]byte{1, 2, 3, 4})
	if kb.Wiped() {
		t.Error("fresh buffer reports wiped")
	}

	kb.Wipe()
	if !kb.Wiped() {
		t.Error("Wiped() = false after Wipe")
	}
	for i, b := range kb.Bytes() {
		if b != 0 {
			t.Errorf("byte %d not zeroed after Wipe", i)
		}
	}

	// Wipe must be idempotent.
	kb.Wipe()
}

func TestKeyBuffer_Empty(t *testing.T) {
	kb := HoldSalt(nil)
	if kb.Len() != 0 {
		t.Errorf("Len() = %d, want 0", kb.Len())
	}
	kb.Wipe()
}

func TestWipe(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	Wipe(buf)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d not zeroed", i)
		}
	}

	// Wiping empty and nil slices must be safe.
	Wipe([]byte{})
	Wipe(nil)
}
