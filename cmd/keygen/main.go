// Command keygen generates and inspects the Ed25519 identity keypair used
// to derive per-peer session keys for filecore transfers.
package main

import (
	"crypto/sha256"
	"encoding/base64"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/term"

	"github.com/nimbusvault/filecore/internal/config"
	"github.com/nimbusvault/filecore/internal/crypto"
	"github.com/nimbusvault/filecore/internal/crypto/identity"
)

var keyPath string

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "generate":
		generateCmd(args)
	case "show":
		showCmd(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("keygen - filecore identity key management")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  keygen generate [flags]  generate a new identity keypair")
	fmt.Println("  keygen show [flags]      print public key and fingerprint")
	fmt.Println()
	fmt.Println("Run 'keygen <command> -h' for command-specific flags")
}

// defaultKeyPath resolves the keystore location out of config.Config's
// KeystoreDir (FILECORE_CONFIG, if set, overlays the built-in defaults),
// falling back to crypto's own ~/.filecore default if the directory can't
// be created.
func defaultKeyPath() string {
	cfg := config.Default()
	if path := os.Getenv("FILECORE_CONFIG"); path != "" {
		if loaded, err := config.Load(path); err == nil {
			cfg = loaded
		}
	}

	if cfg.KeystoreDir != "" {
		if err := os.MkdirAll(cfg.KeystoreDir, 0o700); err == nil {
			return filepath.Join(cfg.KeystoreDir, "identity.json")
		}
	}

	path, err := crypto.GetDefaultKeystorePath()
	if err != nil {
		return "identity.json"
	}
	return path
}

func generateCmd(args []string) {
	var noPassphrase, force bool

	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	fs.StringVar(&keyPath, "path", defaultKeyPath(), "keystore file path")
	fs.BoolVar(&noPassphrase, "no-passphrase", false, "store the private key unencrypted")
	fs.BoolVar(&force, "force", false, "overwrite an existing key")
	fs.Parse(args)

	if !force {
		if _, err := os.Stat(keyPath); err == nil {
			fmt.Fprintf(os.Stderr, "%s already exists; rerun with -force to overwrite\n", keyPath)
			os.Exit(1)
		}
	}

	kp, err := identity.GenerateEd25519()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate keypair: %v\n", err)
		os.Exit(1)
	}

	passphrase := ""
	if !noPassphrase {
		passphrase = readConfirmedPassphrase()
	}

	if err := crypto.SaveIdentity(keyPath, kp, passphrase); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save identity: %v\n", err)
		os.Exit(1)
	}

	storedPath := keyPath
	if passphrase == "" {
		// SaveIdentity writes an unencrypted key to a ".insecure" sibling.
		storedPath = keyPath + ".insecure"
	}

	printKeyInfo(kp.Public)
	fmt.Println()
	fmt.Printf("stored in: %s\n", storedPath)
	if passphrase == "" {
		fmt.Println()
		fmt.Println("WARNING: key stored WITHOUT encryption")
	}
}

func readConfirmedPassphrase() string {
	fmt.Print("Enter passphrase (leave empty for no encryption): ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read passphrase: %v\n", err)
		os.Exit(1)
	}
	if len(first) == 0 {
		return ""
	}

	fmt.Print("Confirm passphrase: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read passphrase: %v\n", err)
		os.Exit(1)
	}
	if string(first) != string(second) {
		fmt.Fprintln(os.Stderr, "passphrases do not match")
		os.Exit(1)
	}
	return string(first)
}

func showCmd(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	fs.StringVar(&keyPath, "path", defaultKeyPath(), "keystore file path")
	fs.Parse(args)

	fmt.Print("Enter passphrase (leave empty if none): ")
	passphraseBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read passphrase: %v\n", err)
		os.Exit(1)
	}

	kp, err := crypto.LoadIdentity(keyPath, string(passphraseBytes))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load identity: %v\n", err)
		fmt.Fprintln(os.Stderr, "run 'keygen generate' first to create a key")
		os.Exit(1)
	}

	printKeyInfo(kp.Public)

	if info, err := os.Stat(keyPath); err == nil {
		fmt.Printf("Created: %s\n", info.ModTime().Format(time.RFC3339))
	}
}

func printKeyInfo(pub []byte) {
	pubB64 := base64.StdEncoding.EncodeToString(pub)
	hash := sha256.Sum256(pub)

	fmt.Println("Public Key:")
	fmt.Printf("  %s\n", pubB64)
	fmt.Println()
	fmt.Println("Fingerprint:")
	fmt.Printf("  SHA256:%x\n", hash[:8])
	fmt.Println()
	fmt.Println("Key Type: Ed25519")
}
