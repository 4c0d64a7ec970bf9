//go:build unix || darwin

/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package crypto

import (
	"syscall"
)

// lockMemory pins a KeyBuffer's backing pages with mlock so the salt and
// the found key never hit swap. Failure is tolerated by the caller: mlock
// is subject to RLIMIT_MEMLOCK and the search still works unswapped.
func lockMemory(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return syscall.Mlock(b)
}

// unlockMemory releases the pinned pages once the buffer has been wiped.
func unlockMemory(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return syscall.Munlock(b)
}
