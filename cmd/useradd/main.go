package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/willemschots/newsroom/internal/auth"
	authdb "github.com/willemschots/newsroom/internal/auth/db"
	"github.com/willemschots/newsroom/internal/db"
	"golang.org/x/term"
)

const helpText = `Usage: useradd -db [sqlite_file] [username]

Prompts for a password and creates a user that can login to the admin area.`

func main() {
	os.Exit(run())
}

func run() int {
	dbFile := flag.String("db", "newsroom.db", "sqlite database file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, helpText)
		return 1
	}

	username := flag.Arg(0)

	pwd, err := promptPassword()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read password: %v\n", err)
		return 1
	}

	writeDB, err := db.OpenSQLite(*dbFile, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		return 1
	}
	defer writeDB.Close()

	readDB, err := db.OpenSQLite(*dbFile, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		return 1
	}
	defer readDB.Close()

	pool, err := auth.NewHashPool(1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create hash pool: %v\n", err)
		return 1
	}

	svc, err := auth.NewService(authdb.New(writeDB, readDB), pool)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create auth service: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*60)
	defer cancel()

	id, err := svc.CreateUser(ctx, username, pwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create user: %v\n", err)
		return 1
	}

	fmt.Printf("created user %q with id %s\n", username, id)

	return 0
}

// promptPassword asks for the password twice, terminal echo is disabled
// while typing.
func promptPassword() (auth.Password, error) {
	fmt.Print("Password: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return auth.Password{}, err
	}

	fmt.Print("Repeat password: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return auth.Password{}, err
	}

	if string(first) != string(second) {
		return auth.Password{}, fmt.Errorf("passwords do not match")
	}

	return auth.ParsePassword(string(first))
}
