package crypto

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/ethereum/go-ethereum/crypto"
)

// Hash returns the keccak256 digest of the given payload.
func Hash(data []byte) []byte {
	return crypto.Keccak256(data)
}

// HashToHex returns the keccak256 digest of the payload, hex encoded.
func HashToHex(data []byte) string {
	return hex.EncodeToString(Hash(data))
}

// HashParts hashes the concatenation of a string prefix and a sequence of
// unsigned integers. Used to derive stable identities from structured data,
// every integer is encoded big endian over 8 bytes so the derivation does
// not depend on host word size.
func HashParts(prefix string, parts ...uint64) string {
	buf := make([]byte, 0, len(prefix)+8*len(parts))
	buf = append(buf, []byte(prefix)...)
	for _, p := range parts {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], p)
		buf = append(buf, b[:]...)
	}
	return HashToHex(buf)
}
