//go:build windows

/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package crypto

// lockMemory is a no-op on Windows; KeyBuffer degrades to an unpinned copy.
func lockMemory(b []byte) error {
	return nil
}

// unlockMemory is a no-op on Windows.
func unlockMemory(b []byte) error {
	return nil
}
