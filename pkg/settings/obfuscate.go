package settings

import (
	"encoding/base64"
	"strings"
)

// Password values are scrambled at rest so they are not stored as plain text. This is not
// encryption; the key is compiled into the binary.

const obfuscatedPrefix = "obf:"

var obfuscationKey = []byte("androidgen.command_settings")

func obfuscate(plain string) string {
	if plain == "" {
		return ""
	}
	return obfuscatedPrefix + base64.StdEncoding.EncodeToString(xorBytes([]byte(plain)))
}

func deobfuscate(stored string) string {
	if !strings.HasPrefix(stored, obfuscatedPrefix) {
		return stored
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, obfuscatedPrefix))
	if err != nil {
		return stored
	}
	return string(xorBytes(raw))
}

func xorBytes(in []byte) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ obfuscationKey[i%len(obfuscationKey)]
	}
	return out
}
