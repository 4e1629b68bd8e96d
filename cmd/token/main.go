// Command token mints a signed bearer token for local testing against the
// jwt auth provider.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/locvowork/employee_directory/internal/auth"
	"github.com/locvowork/employee_directory/internal/config"
)

func main() {
	user := flag.String("user", "", "User id placed in the sub claim")
	ttl := flag.Duration("ttl", time.Hour, "Token lifetime")
	audience := flag.String("audience", "", "Audience claim (defaults to AUTH_JWT_AUDIENCE)")
	flag.Parse()

	if *user == "" {
		flag.PrintDefaults()
		log.Fatal("-user is required")
	}

	cfg, err := config.LoadEnvConfig()
	if err != nil {
		log.Fatal(err)
	}
	aud := *audience
	if aud == "" {
		aud = cfg.AUTH_JWT_AUDIENCE
	}

	token, err := auth.MintToken(cfg.AUTH_JWT_SECRET, *user, aud, *ttl)
	if err != nil {
		log.Fatalf("mint token: %v", err)
	}
	fmt.Println(token)
}
