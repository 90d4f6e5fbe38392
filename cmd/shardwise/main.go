package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/seclave/shardwise/cmd/flags"
	"github.com/seclave/shardwise/generation"
	"github.com/seclave/shardwise/interfaces"
	"github.com/seclave/shardwise/recovery"
	"github.com/seclave/shardwise/shard"
	"github.com/seclave/shardwise/storage"
	"github.com/urfave/cli/v2"
)

var serviceLogFlag = flags.LogServiceFlagFn("shardwise")

var secretFileFlag = &cli.StringFlag{
	Name:  "secret-file",
	Usage: "file holding the secret to split; reads stdin when omitted",
}
var totalFlag = &cli.IntFlag{
	Name:    "total",
	Aliases: []string{"n"},
	Value:   5,
	Usage:   "number of shards to produce (2-7)",
}
var thresholdFlag = &cli.IntFlag{
	Name:    "threshold",
	Aliases: []string{"t"},
	Value:   recovery.DefaultThreshold,
	Usage:   "shards required to recover the secret",
}
var encryptFlag = &cli.BoolFlag{
	Name:  "encrypt",
	Usage: "password-protect the shards; prompts for the password",
}
var outDirFlag = &cli.StringFlag{
	Name:  "out",
	Value: ".",
	Usage: "directory to write shard files into",
}
var stdinFlag = &cli.BoolFlag{
	Name:  "stdin",
	Usage: "read pasted shards from stdin in addition to file arguments",
}
var artifactIDFlag = &cli.StringSliceFlag{
	Name:  "id",
	Usage: "artifact content IDs to fetch from backup storage (requires --backup)",
}

func main() {
	app := &cli.App{
		Name:  "shardwise",
		Usage: "Split secrets into shards and recover them",
		Commands: []*cli.Command{
			{
				Name:   "split",
				Usage:  "Split a secret into shard files",
				Flags:  append([]cli.Flag{secretFileFlag, totalFlag, thresholdFlag, encryptFlag, outDirFlag, flags.BackupFlag, serviceLogFlag}, flags.CommonFlags...),
				Action: runSplit,
			},
			{
				Name:      "recover",
				Usage:     "Recover a secret from shard files or pasted shards",
				ArgsUsage: "[shard files...]",
				Flags:     append([]cli.Flag{stdinFlag, artifactIDFlag, flags.BackupFlag, serviceLogFlag}, flags.CommonFlags...),
				Action:    runRecover,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runSplit(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	secret, err := readSecret(cCtx.String(secretFileFlag.Name))
	if err != nil {
		return err
	}

	var password string
	if cCtx.Bool(encryptFlag.Name) {
		password, err = readNewPassword()
		if err != nil {
			return err
		}
	}

	engine := generation.NewEngine(shard.ShamirSplitter{}, logger)
	artifacts, err := engine.Generate(generation.Params{
		Secret:     secret,
		TotalCount: cCtx.Int(totalFlag.Name),
		Threshold:  cCtx.Int(thresholdFlag.Name),
		Password:   password,
	})
	if err != nil {
		return err
	}

	outDir := cCtx.String(outDirFlag.Name)
	total := cCtx.Int(totalFlag.Name)
	if err := writeArtifacts(outDir, total, artifacts); err != nil {
		return err
	}
	logger.Info("Shard files written",
		slog.String("dir", outDir),
		slog.Int("shards", len(artifacts)))

	backupURIs := cCtx.StringSlice(flags.BackupFlag.Name)
	if len(backupURIs) > 0 {
		locations := make([]interfaces.StorageBackendLocation, len(backupURIs))
		for i, uri := range backupURIs {
			locations[i] = interfaces.StorageBackendLocation(uri)
		}

		backend, err := storage.NewStorageBackendFactory(logger).CreateMultiBackend(locations)
		if err != nil {
			return fmt.Errorf("failed to set up backup storage: %w", err)
		}

		ids, err := engine.Backup(cCtx.Context, backend, artifacts)
		if err != nil {
			return err
		}
		for i, id := range ids {
			fmt.Printf("shard %d backed up as %s\n", artifacts[i].Index, id)
		}
	}

	return nil
}

func runRecover(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := recovery.NewSession(logger)

	for _, path := range cCtx.Args().Slice() {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if _, err := sess.AddFile(filepath.Base(path), content); err != nil {
			// A bad file never aborts the rest of the batch.
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", path, err)
		}
	}

	restoreIDs := cCtx.StringSlice(artifactIDFlag.Name)
	if len(restoreIDs) > 0 {
		backupURIs := cCtx.StringSlice(flags.BackupFlag.Name)
		if len(backupURIs) == 0 {
			return fmt.Errorf("--id requires at least one --backup storage URI")
		}

		locations := make([]interfaces.StorageBackendLocation, len(backupURIs))
		for i, uri := range backupURIs {
			locations[i] = interfaces.StorageBackendLocation(uri)
		}
		backend, err := storage.NewStorageBackendFactory(logger).CreateMultiBackend(locations)
		if err != nil {
			return fmt.Errorf("failed to set up backup storage: %w", err)
		}

		ids := make([]interfaces.ArtifactID, len(restoreIDs))
		for i, raw := range restoreIDs {
			ids[i], err = interfaces.NewArtifactIDFromHex(raw)
			if err != nil {
				return fmt.Errorf("invalid artifact ID %q: %w", raw, err)
			}
		}

		if _, err := recovery.Restore(ctx, backend, ids, sess, logger); err != nil {
			return err
		}
	}

	if cCtx.Bool(stdinFlag.Name) || (cCtx.NArg() == 0 && len(restoreIDs) == 0) {
		fmt.Fprintln(os.Stderr, "Paste your shards, then close input with Ctrl-D:")
		pasted, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		for _, in := range sess.AddPaste(string(pasted)) {
			if in.Err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", in.Source, in.Err)
			}
		}
	}

	engine := recovery.NewEngine(shard.ShamirSplitter{}, logger)
	secret, err := engine.Recover(ctx, sess, &terminalPrompt{})
	if err != nil {
		return err
	}

	fmt.Println(secret)
	return nil
}

func readSecret(path string) (string, error) {
	var raw []byte
	var err error
	if path != "" {
		raw, err = os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read secret file: %w", err)
		}
	} else {
		fmt.Fprintln(os.Stderr, "Enter the secret to split, then close input with Ctrl-D:")
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read secret from stdin: %w", err)
		}
	}
	return strings.TrimSpace(string(raw)), nil
}

func writeArtifacts(outDir string, total int, artifacts []generation.Artifact) error {
	if err := os.MkdirAll(outDir, 0700); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, artifact := range artifacts {
		if err := os.WriteFile(filepath.Join(outDir, artifact.PlainFileName(total)), artifact.Plain, 0600); err != nil {
			return fmt.Errorf("failed to write shard %d: %w", artifact.Index, err)
		}
		if artifact.Armored != nil {
			if err := os.WriteFile(filepath.Join(outDir, artifact.ArmoredFileName(total)), artifact.Armored, 0600); err != nil {
				return fmt.Errorf("failed to write shard %d: %w", artifact.Index, err)
			}
			if err := os.WriteFile(filepath.Join(outDir, artifact.PacketFileName(total)), artifact.Packet, 0600); err != nil {
				return fmt.Errorf("failed to write shard %d: %w", artifact.Index, err)
			}
		}
	}
	return nil
}
