// Command couponctl issues the credentials the server reads from its
// environment: an admin bearer token for ADMIN_JWT_SECRET and a bcrypt hash
// for METRICS_PASSWORD_HASH.
//
//	couponctl token [-secret s] [-subject ops] [-ttl 24h]
//	couponctl hash-password <password>
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"couponsystem/internal/config"
	"couponsystem/pkg/hash"
	"couponsystem/pkg/jwt"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	secret := ""
	if cfg, err := config.LoadConfig("."); err == nil {
		secret = cfg.AdminJWTSecret
	}

	if err := run(os.Args[1:], os.Stdin, os.Stdout, secret); err != nil {
		log.Fatal().Err(err).Msg("couponctl failed")
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer, defaultSecret string) error {
	if len(args) == 0 {
		return errors.New("usage: couponctl token|hash-password")
	}

	switch args[0] {
	case "token":
		fs := flag.NewFlagSet("token", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		secret := fs.String("secret", defaultSecret, "HS256 secret, defaults to ADMIN_JWT_SECRET")
		subject := fs.String("subject", "admin", "token subject")
		ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *secret == "" {
			return errors.New("no secret: pass -secret or set ADMIN_JWT_SECRET")
		}

		token, err := jwt.GenerateToken(*secret, *subject, jwt.RoleAdmin, *ttl)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		fmt.Fprintln(stdout, token)
		return nil

	case "hash-password":
		password := ""
		if len(args) > 1 {
			password = args[1]
		} else {
			line, err := bufio.NewReader(stdin).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if password == "" {
			return errors.New("empty password")
		}

		hashed, err := hash.HashPassword(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		fmt.Fprintln(stdout, hashed)
		return nil

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
