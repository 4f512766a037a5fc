// Command hash-generator prints bcrypt hashes for seed accounts. Passwords
// are read from stdin, one per line, so they stay out of shell history.
//
//	printf 'correct-horse-battery\n' | go run ./cmd/hash-generator -cost 12
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/service/auth"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	viper.SetEnvPrefix("BAZAAR")
	viper.SetDefault("auth_bcrypt_cost", bcrypt.DefaultCost)
	_ = viper.BindEnv("auth_bcrypt_cost")

	cost := flag.Int("cost", viper.GetInt("auth_bcrypt_cost"), "bcrypt cost (defaults to BAZAAR_AUTH_BCRYPT_COST)")
	flag.Parse()

	hasher, err := auth.NewBcryptHasher(*cost)
	if err != nil {
		slog.Error("invalid bcrypt cost", "cost", *cost, "error", err)
		os.Exit(1)
	}

	if err := generate(os.Stdin, os.Stdout, hasher); err != nil {
		slog.Error("failed to generate hashes", "error", err)
		os.Exit(1)
	}
}

// generate writes one hash per non-empty input line. Lines that break the
// password policy are reported and skipped.
func generate(in io.Reader, out io.Writer, hasher auth.PasswordHasher) error {
	scanner := bufio.NewScanner(in)
	line := 0
	for scanner.Scan() {
		line++
		password := scanner.Text()
		if password == "" {
			continue
		}

		if n := len(password); n < domain.MinPasswordLength || n > domain.MaxPasswordLength {
			slog.Warn("skipping password outside length policy",
				"line", line,
				"min", domain.MinPasswordLength,
				"max", domain.MaxPasswordLength)
			continue
		}

		hash, err := hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := fmt.Fprintln(out, hash); err != nil {
			return err
		}
	}
	return scanner.Err()
}
