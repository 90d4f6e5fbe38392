package cryptoutils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// PacketMagic is the first byte of every binary encrypted-shard packet.
// The high bit is deliberately set so format detection can separate
// encrypted packets from textual input by inspecting a single byte.
const PacketMagic byte = 0xC5

// packetVersion identifies the packet layout; bump when the KDF
// parameters or framing change.
const packetVersion byte = 0x01

// Packet layout: [magic][version][16-byte salt][12-byte nonce][ciphertext].
const (
	saltSize         = 16
	nonceSize        = 12
	packetHeaderSize = 2 + saltSize + nonceSize
)

// Argon2id parameters: time=1, memory=64MiB, threads=4, 32-byte key.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

var (
	// ErrWrongPassword is returned when a well-formed packet fails
	// authenticated decryption. With AES-GCM an authentication failure
	// and a wrong password are indistinguishable, and the password is
	// overwhelmingly the likelier cause.
	ErrWrongPassword = errors.New("wrong password")

	// ErrMalformedCiphertext is returned when the input is not a valid
	// encrypted-shard packet at all. This is a format problem, not a
	// password problem, and retrying with another password cannot fix it.
	ErrMalformedCiphertext = errors.New("malformed encrypted packet")
)

// deriveKey stretches the password into an AES-256 key with Argon2id.
func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// EncryptWithPassword seals plaintext under a password-derived key and
// returns the binary packet. A fresh random salt and nonce are drawn for
// every call, so encrypting the same plaintext twice yields different
// packets.
func EncryptWithPassword(plaintext []byte, password string) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, errors.New("nothing to encrypt")
	}
	if password == "" {
		return nil, errors.New("empty password")
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesBlock, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(aesBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	packet := make([]byte, 0, packetHeaderSize+len(ciphertext))
	packet = append(packet, PacketMagic, packetVersion)
	packet = append(packet, salt...)
	packet = append(packet, nonce...)
	packet = append(packet, ciphertext...)
	return packet, nil
}

// DecryptWithPassword opens a binary packet produced by
// EncryptWithPassword. Structural problems yield ErrMalformedCiphertext;
// an authentication failure on a well-formed packet yields
// ErrWrongPassword.
func DecryptWithPassword(packet []byte, password string) ([]byte, error) {
	if len(packet) <= packetHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is too short", ErrMalformedCiphertext, len(packet))
	}
	if packet[0] != PacketMagic {
		return nil, fmt.Errorf("%w: unexpected leading byte 0x%02x", ErrMalformedCiphertext, packet[0])
	}
	if packet[1] != packetVersion {
		return nil, fmt.Errorf("%w: unsupported packet version %d", ErrMalformedCiphertext, packet[1])
	}

	salt := packet[2 : 2+saltSize]
	nonce := packet[2+saltSize : packetHeaderSize]
	ciphertext := packet[packetHeaderSize:]

	aesBlock, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(aesBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrWrongPassword
	}
	return plaintext, nil
}

// HasPacketMarker reports whether data plausibly starts an encrypted
// packet: a leading byte with the high bit set. This is a heuristic for
// format detection, not a guarantee the packet will parse.
func HasPacketMarker(data []byte) bool {
	return len(data) > 0 && data[0]&0x80 != 0
}
