/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package keyfile reads and writes the hex-encoded salt, preimage and key
// files shared by every subcommand, plus the optional JSON parameter file.
//
// All formats are a single lowercase hex line: 32 characters for a salt,
// 16 for a preimage, 64 for a key, optionally followed by whitespace. The
// path "-" means standard input or standard output.
package keyfile

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wskdf/go-wskdf/internal/core"
	"github.com/wskdf/go-wskdf/internal/crypto"
)

// Stdio is the path naming standard input or standard output.
const Stdio = "-"

// filePerm keeps key material files private to the owner.
const filePerm = 0o600

func readAll(path string) ([]byte, error) {
	if path == Stdio {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, crypto.WrapError("read stdin", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- paths are operator-supplied by design
	if err != nil {
		return nil, crypto.WrapError("read "+path, err)
	}
	return data, nil
}

func writeAll(path string, data []byte) error {
	if path == Stdio {
		if _, err := os.Stdout.Write(data); err != nil {
			return crypto.WrapError("write stdout", err)
		}
		return nil
	}
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return crypto.WrapError("write "+path, err)
	}
	return nil
}

// readHex reads a file holding exactly hexLen hex characters, tolerating
// trailing whitespace.
func readHex(path string, hexLen int, what string) ([]byte, error) {
	data, err := readAll(path)
	if err != nil {
		return nil, err
	}

	s := strings.TrimRight(string(data), " \t\r\n")
	if len(s) != hexLen {
		return nil, fmt.Errorf("%w: %s must be %d hex characters, got %d",
			crypto.ErrInvalidEncoding, what, hexLen, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: bad %s: %v", crypto.ErrInvalidEncoding, what, err)
	}
	return raw, nil
}

// ReadSalt reads a 16-byte salt from its 32-hex-character file.
func ReadSalt(path string) ([]byte, error) {
	return readHex(path, core.SaltHexLen, "salt")
}

// WriteSalt writes a salt as 32 lowercase hex characters plus newline.
func WriteSalt(path string, salt []byte) error {
	if err := core.ValidateSalt(salt); err != nil {
		return err
	}
	return writeAll(path, []byte(hex.EncodeToString(salt)+"\n"))
}

// ReadPreimage reads a preimage from its 16-hex-character file.
func ReadPreimage(path string) (uint64, error) {
	raw, err := readHex(path, core.PreimageHexLen, "preimage")
	if err != nil {
		return 0, err
	}
	return core.ParsePreimageHex(hex.EncodeToString(raw))
}

// WritePreimage writes a preimage as 16 lowercase hex characters plus
// newline.
func WritePreimage(path string, preimage uint64) error {
	return writeAll(path, []byte(core.PreimageHex(preimage)+"\n"))
}

// ReadKey reads a 32-byte key from its 64-hex-character file.
func ReadKey(path string) ([]byte, error) {
	return readHex(path, core.KeyHexLen, "key")
}

// WriteKey writes a key as 64 lowercase hex characters plus newline.
func WriteKey(path string, key []byte) error {
	if len(key) != core.KeySize {
		return fmt.Errorf("%w: key must be %d bytes, got %d",
			crypto.ErrInvalidEncoding, core.KeySize, len(key))
	}
	return writeAll(path, []byte(hex.EncodeToString(key)+"\n"))
}

// Params records everything needed to re-derive or search for a key.
type Params struct {
	NBits       int    `json:"n_bits"`
	OpsLimit    uint32 `json:"ops_limit"`
	MemLimitKiB uint32 `json:"mem_limit_kbytes"`
	SaltHex     string `json:"salt_hex"`
}

// WriteParams writes the JSON parameter file.
func WriteParams(path string, p Params) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return crypto.WrapError("encode params", err)
	}
	return writeAll(path, append(data, '\n'))
}

// ReadParams reads the JSON parameter file.
func ReadParams(path string) (Params, error) {
	var p Params
	data, err := readAll(path)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("%w: bad params file: %v", crypto.ErrInvalidEncoding, err)
	}
	return p, nil
}
