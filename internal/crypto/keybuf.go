/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// keybuf.go: Locked storage for the two long-lived secrets of a search run
package crypto

import (
	"runtime"
	"sync"
)

// KeyBuffer holds one of the two secrets that outlive a single worker
// iteration: the salt every derivation reads, or the winning key carried in
// a search result. Everything shorter-lived (candidate keys the oracle
// rejected) is wiped in place with Wipe and never reaches a KeyBuffer.
//
// The backing memory is locked against swapping on a best-effort basis for
// as long as the buffer lives.
type KeyBuffer struct {
	buf    []byte
	unlock func()
	wipe   sync.Once
	wiped  bool
}

// HoldKey moves a derived key into locked storage. The source slice is
// wiped: after HoldKey returns, the buffer is the only live copy, which is
// exactly what the accept path wants when it publishes a Result.
func HoldKey(key []byte) *KeyBuffer {
	kb := hold(key)
	Wipe(key)
	return kb
}

// HoldSalt copies the salt into locked storage for the duration of a search
// run. Unlike HoldKey it leaves the caller's slice intact: the salt is the
// caller's to reuse across runs.
func HoldSalt(salt []byte) *KeyBuffer {
	return hold(salt)
}

func hold(b []byte) *KeyBuffer {
	buf := make([]byte, len(b))
	copy(buf, b)

	// Locking is best effort; ulimits or the platform may refuse, and a
	// swappable buffer still beats no buffer.
	unlock := func() {}
	if err := lockMemory(buf); err == nil {
		unlock = func() { _ = unlockMemory(buf) }
	}
	return &KeyBuffer{buf: buf, unlock: unlock}
}

// Bytes returns the held secret. The slice aliases the locked memory and is
// all zeros once Wipe has run.
func (kb *KeyBuffer) Bytes() []byte {
	return kb.buf
}

// Len returns the secret's length.
func (kb *KeyBuffer) Len() int {
	return len(kb.buf)
}

// Wipe zeroes the secret and unlocks the memory. It is idempotent; the
// search engine wipes the salt buffer when Search returns and the result
// buffer when the caller closes the Result.
func (kb *KeyBuffer) Wipe() {
	kb.wipe.Do(func() {
		Wipe(kb.buf)
		kb.unlock()
		kb.wiped = true
	})
}

// Wiped reports whether Wipe has run.
func (kb *KeyBuffer) Wiped() bool {
	return kb.wiped
}

// Wipe zeroes a transient secret in place: a candidate key the oracle
// rejected, or the caller's copy after HoldKey took ownership. KeepAlive
// stops the compiler from eliding the stores on a value it considers dead.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
