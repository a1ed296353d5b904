// Package google handles authentication against Google APIs using a
// service account.
//
// The package loads a service account JSON key file, signs a JWT
// assertion with the key's RSA private key, and exchanges it at the
// key's token endpoint for a short-lived bearer token. Tokens are
// cached in memory and reused until they come within a configurable
// skew of their expiry; concurrent refreshes collapse into a single
// outbound request.
//
// Example usage:
//
//	key, err := google.LoadServiceAccountKey(os.Getenv("GOOGLE_SERVICE_ACCOUNT_KEY"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	provider, err := google.NewServiceAccountTokenProvider(key, google.TokenProviderConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ts := google.TokenSource(ctx, provider)
//	svc, err := docs.NewService(ctx, option.WithTokenSource(ts))
package google
