/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package keyfile

import (
	"bytes"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/wskdf/go-wskdf/internal/crypto"
)

func TestSaltRoundTrip(t *testing.T) {
	salt, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	path := filepath.Join(t.TempDir(), "salt")

	if err := WriteSalt(path, salt); err != nil {
		t.Fatalf("WriteSalt failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "000102030405060708090a0b0c0d0e0f\n" {
		t.Errorf("salt file contents = %q", got)
	}

	back, err := ReadSalt(path)
	if err != nil {
		t.Fatalf("ReadSalt failed: %v", err)
	}
	if !bytes.Equal(back, salt) {
		t.Error("salt did not round-trip")
	}
}

func TestReadSalt_TrailingWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salt")
	if err := os.WriteFile(path, []byte("000102030405060708090a0b0c0d0e0f \t\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	salt, err := ReadSalt(path)
	if err != nil {
		t.Fatalf("ReadSalt failed: %v", err)
	}
	if len(salt) != 16 {
		t.Errorf("salt length = %d, want 16", len(salt))
	}
}

func TestReadSalt_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"too short", "0001020304\n"},
		{"too long", "000102030405060708090a0b0c0d0e0f00\n"},
		{"non-hex", "zz0102030405060708090a0b0c0d0e0f\n"},
		{"leading whitespace", " 000102030405060708090a0b0c0d0e0f\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "salt")
			if err := os.WriteFile(path, []byte(tt.contents), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := ReadSalt(path); !errors.Is(err, crypto.ErrInvalidEncoding) {
				t.Errorf("ReadSalt error = %v, want ErrInvalidEncoding", err)
			}
		})
	}
}

func TestReadSalt_MissingFile(t *testing.T) {
	if _, err := ReadSalt(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadSalt error = %v, want ErrNotExist", err)
	}
}

func TestPreimageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preimage")

	if err := WritePreimage(path, 14); err != nil {
		t.Fatalf("WritePreimage failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "000000000000000e\n" {
		t.Errorf("preimage file contents = %q", got)
	}

	back, err := ReadPreimage(path)
	if err != nil {
		t.Fatalf("ReadPreimage failed: %v", err)
	}
	if back != 14 {
		t.Errorf("preimage round-tripped to %d, want 14", back)
	}
}

func TestKeyRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0xab}, 32)
	path := filepath.Join(t.TempDir(), "key")

	if err := WriteKey(path, key); err != nil {
		t.Fatalf("WriteKey failed: %v", err)
	}
	back, err := ReadKey(path)
	if err != nil {
		t.Fatalf("ReadKey failed: %v", err)
	}
	if !bytes.Equal(back, key) {
		t.Error("key did not round-trip")
	}
}

func TestWriteKey_WrongSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := WriteKey(path, make([]byte, 16)); !errors.Is(err, crypto.ErrInvalidEncoding) {
		t.Errorf("WriteKey error = %v, want ErrInvalidEncoding", err)
	}
}

func TestKeyMaterialFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are unix-specific")
	}

	path := filepath.Join(t.TempDir(), "key")
	if err := WriteKey(path, make([]byte, 32)); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("key file mode = %o, want 600", perm)
	}
}

func TestParamsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	params := Params{
		NBits:       16,
		OpsLimit:    7,
		MemLimitKiB: 4194304,
		SaltHex:     "000102030405060708090a0b0c0d0e0f",
	}

	if err := WriteParams(path, params); err != nil {
		t.Fatalf("WriteParams failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"n_bits"`, `"ops_limit"`, `"mem_limit_kbytes"`, `"salt_hex"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("params file missing %s field", field)
		}
	}

	back, err := ReadParams(path)
	if err != nil {
		t.Fatalf("ReadParams failed: %v", err)
	}
	if back != params {
		t.Errorf("params round-tripped to %+v, want %+v", back, params)
	}
}

func TestReadParams_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadParams(path); !errors.Is(err, crypto.ErrInvalidEncoding) {
		t.Errorf("ReadParams error = %v, want ErrInvalidEncoding", err)
	}
}
