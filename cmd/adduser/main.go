package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"cashgram/internal/auth"
	"cashgram/internal/ledger"
	"cashgram/internal/storage"

	"golang.org/x/term"
)

const defaultDB = "expenses.db"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	phoneFlag := fs.String("phone", "", "Phone number (08..., 62... or +62...)")
	name := fs.String("name", "", "Display name (optional)")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	dbPath := fs.String("db", defaultDB, "SQLite path or postgres:// URL")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *phoneFlag == "" {
		fmt.Fprintln(stdout, "Usage: adduser -phone <phone> [-name <name>] [-password <password>] [-db <db>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: phone")
	}
	phone := auth.NormalizePhone(*phoneFlag)

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout) // Print newline after password input
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	// Environment wins over the flag default, not over an explicit -db.
	if *dbPath == defaultDB {
		for _, key := range []string{"DATABASE_URL", "DB_PATH"} {
			if v := os.Getenv(key); v != "" {
				*dbPath = v
				break
			}
		}
	}

	db, err := storage.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := db.CreateUser(ctx, phone, hash, strings.TrimSpace(*name), ledger.DefaultCategories())
	if errors.Is(err, storage.ErrDuplicate) {
		return fmt.Errorf("user %s already exists", phone)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", user.Phone, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	// Check if stdin is a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
