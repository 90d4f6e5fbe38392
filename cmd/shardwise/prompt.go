package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/seclave/shardwise/interfaces"
	"golang.org/x/term"
)

// terminalPrompt asks for passwords on the controlling terminal with
// echo disabled. It opens /dev/tty so prompting still works when stdin
// carries pasted shards.
type terminalPrompt struct{}

func (p *terminalPrompt) Password(ctx context.Context, attempt int, afterWrongPassword bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tty, err := os.Open("/dev/tty")
	if err != nil {
		tty = os.Stdin
	} else {
		defer tty.Close()
	}

	if afterWrongPassword {
		fmt.Fprintln(os.Stderr, "Password incorrect.")
	}
	fmt.Fprintf(os.Stderr, "Password for encrypted shards (attempt %d, empty cancels): ", attempt)

	raw, err := term.ReadPassword(int(tty.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", interfaces.ErrPromptCancelled
		}
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	password := string(raw)
	if password == "" {
		return "", interfaces.ErrPromptCancelled
	}
	return password, nil
}

// readNewPassword prompts twice for a fresh password and requires the
// entries to match.
func readNewPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password to protect the shards: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(first) == 0 {
		return "", errors.New("password must not be empty")
	}

	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
