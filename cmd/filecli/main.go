// Command filecli drives the transfer, copy, scan, and search engines from
// the command line: useful both as a manual testing harness and as a
// reference for how a host process wires these packages together.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nimbusvault/filecore/internal/chunker"
	"github.com/nimbusvault/filecore/internal/config"
	"github.com/nimbusvault/filecore/internal/copycheckpoint"
	"github.com/nimbusvault/filecore/internal/crypto"
	"github.com/nimbusvault/filecore/internal/observability"
	"github.com/nimbusvault/filecore/internal/scan"
	"github.com/nimbusvault/filecore/internal/search"
	"github.com/nimbusvault/filecore/internal/transfer/cancel"
	"github.com/nimbusvault/filecore/internal/transfer/copy"
	"github.com/nimbusvault/filecore/internal/transfer/download"
	"github.com/nimbusvault/filecore/internal/transfer/upload"
)

// loadConfig reads FILECORE_CONFIG if set, otherwise falls back to the
// built-in defaults; every subcommand sources its tunables from here
// instead of hardcoding them.
func loadConfig() *config.Config {
	if path := os.Getenv("FILECORE_CONFIG"); path != "" {
		if cfg, err := config.Load(path); err == nil {
			return cfg
		}
	}
	return config.Default()
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := loadConfig()
	logger := observability.NewLogger("filecli", "dev", nil)
	metrics := observability.NewMetrics(nil)

	var err error
	switch os.Args[1] {
	case "encrypt":
		err = encryptCmd(os.Args[2:], cfg, logger, metrics)
	case "decrypt":
		err = decryptCmd(os.Args[2:], cfg, logger, metrics)
	case "copy":
		err = copyCmd(os.Args[2:], logger, metrics)
	case "scan":
		err = scanCmd(os.Args[2:])
	case "search":
		err = searchCmd(os.Args[2:], cfg)
	case "manifest":
		err = manifestCmd(os.Args[2:], cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "filecli: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("filecli - local filecore transfer and search harness")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  filecli encrypt -in <path> -out <path> [-chunk-size N]")
	fmt.Println("  filecli decrypt -in <path> -out <path>")
	fmt.Println("  filecli copy -src <path> -dst <path> [-session ID]")
	fmt.Println("  filecli scan <path>")
	fmt.Println("  filecli search -dir <path> <query>")
	fmt.Println("  filecli manifest [-chunk-size N] [-verify] <path>")
	fmt.Println()
	fmt.Println("FILECORE_CONFIG, if set, names a YAML file overlaid on the built-in defaults.")
}

func readPassphrase(prompt string) string {
	fmt.Print(prompt)
	var passphrase string
	fmt.Scanln(&passphrase)
	return passphrase
}

func encryptCmd(args []string, cfg *config.Config, logger *observability.Logger, metrics *observability.Metrics) error {
	fs := flag.NewFlagSet("encrypt", flag.ExitOnError)
	in := fs.String("in", "", "source plaintext file")
	out := fs.String("out", "", "destination ciphertext file")
	chunkSize := fs.Int("chunk-size", int(cfg.ChunkSize), "chunk size in bytes")
	fs.Parse(args)

	if *in == "" || *out == "" {
		return fmt.Errorf("encrypt requires -in and -out")
	}

	passphrase := readPassphrase("Enter passphrase: ")
	salt, err := crypto.NewSalt()
	if err != nil {
		return err
	}
	key := crypto.DeriveMasterKey(passphrase, salt)

	dst, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer dst.Close()

	// The salt is written ahead of the container stream so decrypt can
	// re-derive the same key from the passphrase alone.
	if _, err := dst.Write(salt); err != nil {
		return err
	}

	sessionID := fmt.Sprintf("encrypt-%s", filenameStem(*in))
	session, err := upload.Open(*in, upload.Options{
		MasterKey:     key[:],
		ShouldEncrypt: true,
		ChunkSize:     *chunkSize,
		Token:         cancel.New(),
		SessionID:     sessionID,
		Logger:        logger,
		Metrics:       metrics,
		OnProgress: func(done, total int64) {
			fmt.Fprintf(os.Stderr, "\rencrypting... %d/%d bytes", done, total)
		},
	})
	if err != nil {
		return err
	}

	for {
		n, err := session.ProcessChunk(func(chunk []byte) error {
			_, werr := dst.Write(chunk)
			return werr
		})
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
	}
	fmt.Fprintln(os.Stderr)
	return session.Finalize()
}

func decryptCmd(args []string, cfg *config.Config, logger *observability.Logger, metrics *observability.Metrics) error {
	fs := flag.NewFlagSet("decrypt", flag.ExitOnError)
	in := fs.String("in", "", "source ciphertext file")
	out := fs.String("out", "", "destination plaintext file")
	readBufSize := fs.Int("read-buffer", int(cfg.ChunkSize), "read buffer size in bytes")
	fs.Parse(args)

	if *in == "" || *out == "" {
		return fmt.Errorf("decrypt requires -in and -out")
	}

	src, err := os.Open(*in)
	if err != nil {
		return err
	}
	defer src.Close()

	salt := make([]byte, crypto.KeySize)
	if _, err := io.ReadFull(src, salt); err != nil {
		return err
	}

	passphrase := readPassphrase("Enter passphrase: ")
	key := crypto.DeriveMasterKey(passphrase, salt)

	sessionID := fmt.Sprintf("decrypt-%s", filenameStem(*in))
	session := download.Open(*out, download.Options{
		ShouldDecrypt: true,
		MasterKey:     key[:],
		Token:         cancel.New(),
		SessionID:     sessionID,
		Logger:        logger,
		Metrics:       metrics,
		OnProgress: func(done, total int64) {
			fmt.Fprintf(os.Stderr, "\rdecrypting... %d bytes", done)
		},
	})

	buf := make([]byte, *readBufSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if err := session.Append(buf[:n]); err != nil {
				return err
			}
		}
		if rerr != nil {
			break
		}
	}
	fmt.Fprintln(os.Stderr)
	return session.Finalize()
}

func copyCmd(args []string, logger *observability.Logger, metrics *observability.Metrics) error {
	fs := flag.NewFlagSet("copy", flag.ExitOnError)
	src := fs.String("src", "", "source path")
	dst := fs.String("dst", "", "destination path")
	sessionID := fs.String("session", "", "resumable session ID; shares a checkpoint store across reruns")
	checkpointPath := fs.String("checkpoint-db", "", "checkpoint database path (default: <dst>.filecore-checkpoints)")
	fs.Parse(args)

	if *src == "" || *dst == "" {
		return fmt.Errorf("copy requires -src and -dst")
	}

	info, err := os.Stat(*src)
	if err != nil {
		return err
	}

	startedAt := time.Now()
	logID := *sessionID
	if logID == "" {
		logID = fmt.Sprintf("copy-%s", filenameStem(*src))
	}
	logger.TransferStarted(logID, *src, info.Size(), 0)
	metrics.RecordTransferStart()

	if !info.IsDir() {
		err := copy.File(*src, *dst, cancel.New(), func(done, total int64) {
			fmt.Fprintf(os.Stderr, "\rcopying... %d/%d bytes", done, total)
		})
		metrics.RecordTransferComplete(err == nil, time.Since(startedAt).Seconds())
		if err != nil {
			logger.Failed(logID, err, "io_failed")
			return err
		}
		logger.Completed(logID, time.Since(startedAt), 0, false)
		return nil
	}

	plan, err := copy.Scan(*src, *dst)
	if err != nil {
		return err
	}

	var skip map[string]bool
	var store *copycheckpoint.Store
	if *sessionID != "" {
		dbPath := *checkpointPath
		if dbPath == "" {
			dbPath = *dst + ".filecore-checkpoints"
		}
		store, err = copycheckpoint.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		skip, err = store.Session(*sessionID)
		if err != nil {
			return err
		}
	}

	it := copy.NewIterator(plan, cancel.New(), skip, func(bytesDone, totalBytes int64, filesDone, totalFiles int) {
		fmt.Fprintf(os.Stderr, "\rcopying... %d/%d files, %d/%d bytes", filesDone, totalFiles, bytesDone, totalBytes)
		logger.Progress(logID, bytesDone, totalBytes, 0)
	})

	for {
		more, err := it.Next()
		if err != nil {
			logger.Failed(logID, err, "io_failed")
			metrics.RecordTransferComplete(false, time.Since(startedAt).Seconds())
			return err
		}
		if !more {
			break
		}
	}
	fmt.Fprintln(os.Stderr)
	logger.Completed(logID, time.Since(startedAt), 0, false)
	metrics.RecordTransferComplete(true, time.Since(startedAt).Seconds())
	return nil
}

func scanCmd(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("scan requires a path")
	}

	result, err := scan.Walk(args[0])
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// searchCmd walks dir, indexes every entry by name, and prints exact search
// results for the given query against that in-memory index. It is a
// one-shot harness, not a persistent service.
func searchCmd(args []string, cfg *config.Config) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	dir := fs.String("dir", ".", "directory to index")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("search requires a query argument")
	}
	query := fs.Arg(0)

	result, err := scan.Walk(*dir)
	if err != nil {
		return err
	}

	idx := search.NewIndex()
	for i, item := range result.Items {
		idx.AddDocument(search.Document{
			NodeID:   fmt.Sprintf("%d", i),
			Name:     item.Name,
			IsFolder: item.IsFolder,
		})
	}

	limit := cfg.SuggestionMaxResults
	if limit <= 0 {
		limit = 20
	}
	hits := idx.SearchExact(query, limit)
	for _, hit := range hits {
		fmt.Printf("%.2f  %s\n", hit.Score, hit.Name)
	}
	return nil
}

// manifestCmd computes the BLAKE3 chunk manifest and Merkle root for a
// single file and prints it as JSON. With -verify, it also recomputes the
// Merkle root from the manifest's own chunk hashes and checks it against
// the root the manifest records, using chunker.VerifyMerkle.
func manifestCmd(args []string, cfg *config.Config) error {
	fs := flag.NewFlagSet("manifest", flag.ExitOnError)
	chunkSize := fs.Int("chunk-size", int(cfg.ChunkSize), "chunk size in bytes")
	verify := fs.Bool("verify", false, "recompute and check the Merkle root")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("manifest requires a file path")
	}
	path := fs.Arg(0)

	manifest, err := chunker.ComputeManifest(path, chunker.ChunkOptions{ChunkSize: *chunkSize})
	if err != nil {
		return err
	}

	if *verify {
		hashes := make([]string, len(manifest.Chunks))
		for i, c := range manifest.Chunks {
			hashes[i] = c.Hash
		}
		ok, err := chunker.VerifyMerkle(manifest, hashes)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("manifest: recomputed Merkle root does not match manifest.MerkleRoot")
		}
		fmt.Fprintln(os.Stderr, "Merkle root verified")
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func filenameStem(path string) string {
	base := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			base = path[i+1:]
			break
		}
	}
	return base
}
