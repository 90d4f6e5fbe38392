package recovery

import (
	"testing"

	"github.com/seclave/shardwise/interfaces"
	"github.com/stretchr/testify/assert"
)

func encryptedInput(raw []byte) interfaces.ClassifiedInput {
	return interfaces.ClassifiedInput{Source: "test", Format: interfaces.FormatBinary, Raw: raw}
}

func TestValidate_EmptyBatchWaits(t *testing.T) {
	v := Validate(nil)
	assert.Equal(t, interfaces.VerdictWaiting, v.Kind)
	assert.Equal(t, DefaultThreshold, v.Threshold)
}

func TestValidate_OnlyNoise(t *testing.T) {
	v := Validate([]interfaces.ClassifiedInput{
		{Source: "noise", Format: interfaces.FormatUnrecognized},
		{Source: "more noise", Format: interfaces.FormatUnrecognized},
	})
	assert.Equal(t, interfaces.VerdictInvalidFormat, v.Kind)
}

func TestValidate_PendingEncryptedRequiresPassword(t *testing.T) {
	v := Validate([]interfaces.ClassifiedInput{
		{Source: "noise", Format: interfaces.FormatUnrecognized},
		encryptedInput([]byte{0xC5, 0x01}),
	})
	assert.Equal(t, interfaces.VerdictPasswordRequired, v.Kind)
}

func TestValidate_DuplicateIndices(t *testing.T) {
	v := Validate([]interfaces.ClassifiedInput{
		usableInput(1, 2, 3),
		usableInput(2, 2, 3),
		usableInput(1, 2, 3),
	})
	assert.Equal(t, interfaces.VerdictDuplicateIndices, v.Kind, "Duplicates poison the batch even above threshold")
}

func TestValidate_InsufficientShares(t *testing.T) {
	v := Validate([]interfaces.ClassifiedInput{
		usableInput(1, 3, 5),
		usableInput(4, 3, 5),
	})
	assert.Equal(t, interfaces.VerdictInsufficientShares, v.Kind)
	assert.Equal(t, 2, v.Usable)
	assert.Equal(t, 3, v.Threshold)
}

func TestValidate_Ready(t *testing.T) {
	v := Validate([]interfaces.ClassifiedInput{
		usableInput(1, 2, 3),
		{Source: "noise", Format: interfaces.FormatUnrecognized},
		usableInput(3, 2, 3),
	})
	assert.Equal(t, interfaces.VerdictReady, v.Kind, "Noise does not block a batch that meets the threshold")
	assert.Equal(t, 2, v.Usable)
}

func TestValidate_ReadyWithSparePendingEncrypted(t *testing.T) {
	v := Validate([]interfaces.ClassifiedInput{
		usableInput(1, 2, 3),
		usableInput(2, 2, 3),
		encryptedInput([]byte{0xC5, 0x01}),
	})
	assert.Equal(t, interfaces.VerdictReady, v.Kind, "Pending encrypted inputs are optional once the threshold is met")
}
