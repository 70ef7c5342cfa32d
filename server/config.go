package main

import (
	"flag"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-training/oauth-playground/pkg/oauthflow"
	"github.com/go-training/oauth-playground/pkg/store"
)

type config struct {
	addr            string
	baseURL         string
	authURL         string
	tokenURL        string
	logLevel        string
	storeType       store.StoreType
	redisAddr       string
	redisPassword   string
	redisDB         int
	credentialTTL   time.Duration
	exchangeTimeout time.Duration
}

func parseFlags(args []string) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("oauth-playground", flag.ContinueOnError)
	fs.StringVar(&cfg.addr, "addr", ":8095", "address to listen on")
	fs.StringVar(&cfg.baseURL, "base-url", "", "Public origin of this server, e.g. https://playground.example.com. Derived from each request when empty")
	fs.StringVar(&cfg.authURL, "auth-url", oauthflow.GoogleAuthURL, "Provider authorization endpoint")
	fs.StringVar(&cfg.tokenURL, "token-url", oauthflow.GoogleTokenURL, "Provider token endpoint")
	fs.StringVar(&cfg.logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR). Defaults to DEBUG in development, INFO in production")
	storeType := fs.String("store", string(store.StoreTypeMemory), "Store type: memory or redis")
	fs.StringVar(&cfg.redisAddr, "redis-addr", "localhost:6379", "Redis address (only used when store=redis)")
	fs.StringVar(&cfg.redisPassword, "redis-password", "", "Redis password (only used when store=redis)")
	fs.IntVar(&cfg.redisDB, "redis-db", 0, "Redis database (only used when store=redis)")
	fs.DurationVar(&cfg.credentialTTL, "credential-ttl", store.DefaultTTL, "Upper bound on how long staged credentials survive an abandoned flow")
	fs.DurationVar(&cfg.exchangeTimeout, "exchange-timeout", oauthflow.DefaultExchangeTimeout, "Timeout for the token exchange request")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	t, err := store.ParseStoreType(*storeType)
	if err != nil {
		return config{}, fmt.Errorf("invalid -store: %w", err)
	}
	cfg.storeType = t

	cfg.baseURL = strings.TrimRight(cfg.baseURL, "/")
	if cfg.baseURL != "" {
		u, err := url.Parse(cfg.baseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return config{}, fmt.Errorf("invalid -base-url %q: want scheme://host[:port]", cfg.baseURL)
		}
		if u.Path != "" || u.RawQuery != "" {
			return config{}, fmt.Errorf("invalid -base-url %q: must be an origin without path or query", cfg.baseURL)
		}
	}
	return cfg, nil
}

func (c config) provider() oauthflow.Provider {
	return oauthflow.Provider{AuthURL: c.authURL, TokenURL: c.tokenURL}
}

func (c config) storeConfig() store.Config {
	return store.Config{
		Type: c.storeType,
		Redis: store.RedisOptions{
			Addr:     c.redisAddr,
			Password: c.redisPassword,
			DB:       c.redisDB,
		},
		TTL: c.credentialTTL,
	}
}
