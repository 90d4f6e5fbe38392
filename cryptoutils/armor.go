package cryptoutils

import (
	"bytes"
	"encoding/pem"
	"fmt"
)

// ArmorType is the PEM block type for armored encrypted shards.
const ArmorType = "SHARDWISE ENCRYPTED SHARD"

// ArmorHeader is the fixed first line of every armored artifact. Format
// detection matches on this literal.
const ArmorHeader = "-----BEGIN " + ArmorType + "-----"

// Armor wraps a binary packet in the textual armored form, suitable for
// pasting into chats and emails that would mangle raw bytes.
func Armor(packet []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: ArmorType, Bytes: packet})
}

// Dearmor extracts the binary packet from an armored artifact. The
// armor block may be surrounded by unrelated text; the first block of
// the expected type wins.
func Dearmor(data []byte) ([]byte, error) {
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return nil, fmt.Errorf("%w: no %q armor block found", ErrMalformedCiphertext, ArmorType)
		}
		if block.Type == ArmorType {
			return block.Bytes, nil
		}
	}
}

// DecryptArtifact decrypts an encrypted shard artifact in either of its
// two transport forms: the armored text block or the raw binary packet.
func DecryptArtifact(data []byte, password string) ([]byte, error) {
	if bytes.Contains(data, []byte(ArmorHeader)) {
		packet, err := Dearmor(data)
		if err != nil {
			return nil, err
		}
		return DecryptWithPassword(packet, password)
	}
	return DecryptWithPassword(data, password)
}
