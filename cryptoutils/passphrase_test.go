package cryptoutils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptWithPassword(t *testing.T) {
	plaintext := []byte("shardwise1 i=1 t=2 n=3 p=AAAA")

	packet, err := EncryptWithPassword(plaintext, "hunter2")
	require.NoError(t, err, "Encryption should succeed")
	assert.True(t, HasPacketMarker(packet), "Packet must carry the high-bit marker")

	recovered, err := DecryptWithPassword(packet, "hunter2")
	require.NoError(t, err, "Decryption with the right password should succeed")
	assert.Equal(t, plaintext, recovered)
}

func TestDecryptWithWrongPassword(t *testing.T) {
	packet, err := EncryptWithPassword([]byte("secret material"), "correct")
	require.NoError(t, err)

	_, err = DecryptWithPassword(packet, "incorrect")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrongPassword, "Authentication failure must map to ErrWrongPassword")
}

func TestDecryptMalformedPacket(t *testing.T) {
	cases := map[string][]byte{
		"empty":         nil,
		"too short":     {PacketMagic, 0x01, 0x02},
		"wrong magic":   append([]byte{0x41, 0x01}, make([]byte, 64)...),
		"wrong version": append([]byte{PacketMagic, 0x7f}, make([]byte, 64)...),
	}

	for name, packet := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecryptWithPassword(packet, "any")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedCiphertext)
			assert.NotErrorIs(t, err, ErrWrongPassword, "Format problems must not look like password problems")
		})
	}
}

func TestEncryptRejectsEmptyInputs(t *testing.T) {
	_, err := EncryptWithPassword(nil, "pw")
	assert.Error(t, err, "empty plaintext")

	_, err = EncryptWithPassword([]byte("data"), "")
	assert.Error(t, err, "empty password")
}

func TestEncryptIsRandomized(t *testing.T) {
	plaintext := []byte("same input")

	first, err := EncryptWithPassword(plaintext, "pw")
	require.NoError(t, err)
	second, err := EncryptWithPassword(plaintext, "pw")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "Fresh salt and nonce must randomize the packet")
}

func TestArmorRoundTrip(t *testing.T) {
	packet, err := EncryptWithPassword([]byte("token text"), "pw")
	require.NoError(t, err)

	armored := Armor(packet)
	assert.True(t, strings.HasPrefix(string(armored), ArmorHeader), "Armor must start with the fixed header literal")

	unwrapped, err := Dearmor(armored)
	require.NoError(t, err)
	assert.Equal(t, packet, unwrapped)
}

func TestDearmorRejectsForeignBlocks(t *testing.T) {
	foreign := "-----BEGIN CERTIFICATE-----\nAAAA\n-----END CERTIFICATE-----\n"
	_, err := Dearmor([]byte(foreign))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedCiphertext)
}

func TestDecryptArtifactBothForms(t *testing.T) {
	plaintext := []byte("shard token line")
	packet, err := EncryptWithPassword(plaintext, "pw")
	require.NoError(t, err)

	fromPacket, err := DecryptArtifact(packet, "pw")
	require.NoError(t, err, "Raw binary packet should decrypt")
	assert.Equal(t, plaintext, fromPacket)

	fromArmor, err := DecryptArtifact(Armor(packet), "pw")
	require.NoError(t, err, "Armored artifact should decrypt")
	assert.Equal(t, plaintext, fromArmor)

	// Armor surrounded by cover text, the way it arrives out of an email.
	noisy := []byte("see attached\n\n" + string(Armor(packet)) + "\nregards\n")
	fromNoisy, err := DecryptArtifact(noisy, "pw")
	require.NoError(t, err, "Armor embedded in surrounding text should decrypt")
	assert.Equal(t, plaintext, fromNoisy)
}
