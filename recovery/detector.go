package recovery

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/seclave/shardwise/cryptoutils"
	"github.com/seclave/shardwise/interfaces"
	"github.com/seclave/shardwise/shard"
)

// shortTextThreshold: textual content shorter than this that fails every
// textual rule is re-examined under the binary rules. Real pasted prose
// is longer; a stray binary packet mis-decoded as text rarely is.
const shortTextThreshold = 200

// Classify judges one raw input as a single unit, first match wins:
//
//  1. textual and decodes as a shard token: plaintext
//  2. textual and contains the armor header literal: armored
//  3. binary starting with the armor header bytes: armored
//  4. binary whose leading byte has the high bit set: binary-encrypted
//  5. textual but very short or carrying control characters: retry 3-4
//  6. otherwise unrecognized, raw content kept for later attempts
func Classify(source string, content []byte) interfaces.ClassifiedInput {
	in := interfaces.ClassifiedInput{Source: source, Format: interfaces.FormatUnrecognized, Raw: content}

	if text, ok := decodeText(content); ok {
		trimmed := strings.TrimSpace(text)

		rec, err := decodeTokenIn(trimmed)
		if err == nil {
			in.Format = interfaces.FormatPlaintext
			in.Record = &rec
			return in
		}
		if errors.Is(err, shard.ErrRecordInvalid) {
			// Structurally a token with bad bookkeeping. Keep the partial
			// record so threshold consensus can see its claimed threshold.
			in.Record = &rec
			in.Err = err
		}

		if strings.Contains(text, cryptoutils.ArmorHeader) {
			in.Format = interfaces.FormatArmored
			return in
		}

		if len(trimmed) >= shortTextThreshold && !containsControl(text) {
			if in.Err == nil {
				in.Err = fmt.Errorf("%s: not a shard token or encrypted artifact", source)
			}
			return in
		}
		// Short or control-laden text: fall through to the binary rules.
	}

	if bytes.HasPrefix(content, []byte(cryptoutils.ArmorHeader)) {
		in.Format = interfaces.FormatArmored
		return in
	}
	if cryptoutils.HasPacketMarker(content) {
		in.Format = interfaces.FormatBinary
		return in
	}

	if in.Err == nil {
		in.Err = fmt.Errorf("%s: format not recognized", source)
	}
	return in
}

// ClassifyPaste splits pasted text into candidates. The whole paste is
// tried as a single token first; failing that, every non-empty trimmed
// line is classified independently, with armored blocks consumed from
// their BEGIN line through their END line as one candidate.
func ClassifyPaste(source string, text string) []interfaces.ClassifiedInput {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	if rec, err := shard.Decode(trimmed); err == nil {
		return []interfaces.ClassifiedInput{{
			Source: source,
			Format: interfaces.FormatPlaintext,
			Record: &rec,
			Raw:    []byte(trimmed),
		}}
	}

	lines := strings.Split(text, "\n")
	var out []interfaces.ClassifiedInput
	for lineNo := 0; lineNo < len(lines); lineNo++ {
		line := strings.TrimSpace(lines[lineNo])
		if line == "" {
			continue
		}
		lineSource := fmt.Sprintf("%s line %d", source, lineNo+1)

		if strings.Contains(line, cryptoutils.ArmorHeader) {
			block, consumed := collectArmorBlock(lines[lineNo:])
			out = append(out, interfaces.ClassifiedInput{
				Source: lineSource,
				Format: interfaces.FormatArmored,
				Raw:    []byte(block),
			})
			lineNo += consumed - 1
			continue
		}

		out = append(out, Classify(lineSource, []byte(line)))
	}
	return out
}

// ClassifyFile classifies an uploaded file's content as one unit.
func ClassifyFile(name string, content []byte) interfaces.ClassifiedInput {
	return Classify(fmt.Sprintf("file %s", name), content)
}

// collectArmorBlock gathers lines from the armor BEGIN line through the
// matching END line. When the END line never arrives the rest of the
// paste is taken; the decrypt attempt will report the damage.
func collectArmorBlock(lines []string) (string, int) {
	endMarker := "-----END " + cryptoutils.ArmorType + "-----"
	for i, line := range lines {
		if strings.Contains(line, endMarker) {
			return strings.Join(lines[:i+1], "\n"), i + 1
		}
	}
	return strings.Join(lines, "\n"), len(lines)
}

// decodeTokenIn decodes a token from text that may carry extra lines,
// such as the preamble of a downloaded shard file. The whole content is
// tried first; failing that, the first line that decodes wins.
func decodeTokenIn(text string) (shard.Record, error) {
	rec, err := shard.Decode(text)
	if err == nil {
		return rec, nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if lineRec, lineErr := shard.Decode(line); lineErr == nil {
			return lineRec, nil
		}
	}
	return rec, err
}

// decodeText attempts a byte-to-text interpretation: valid UTF-8 with no
// NUL bytes.
func decodeText(data []byte) (string, bool) {
	if len(data) == 0 || !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return "", false
	}
	return string(data), true
}

// containsControl reports whether the text carries non-whitespace
// control characters, the telltale of binary data decoded as text.
func containsControl(text string) bool {
	for _, r := range text {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}
