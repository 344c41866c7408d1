// Package sdk is a Go client for the D&B Credibility (DandB) business
// data REST API: business search, verified profiles, user accounts,
// tokens and product entitlements.
//
// # Features
//
// The SDK provides:
//   - One method per API endpoint, each returning the response envelope
//   - OAuth2 client-credentials access tokens, optionally cached through
//     a pluggable TokenCache
//   - Thread-safe operations with connection pooling
//   - Context support for cancellation and timeouts
//   - Typed transport errors that work with errors.Is and errors.As
//   - Observer hooks for metrics, logging and tracing
//
// # Basic Usage
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/birbparty/dandb-go/sdk"
//	)
//
//	func main() {
//	    client, err := sdk.NewClient(sdk.DefaultConfig().
//	        WithCredentials("client-id", "client-secret"))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer client.Close()
//
//	    resp, err := client.BusinessSearchByNameAddress(context.Background(),
//	        "Acme Widgets", "CA", &sdk.AddressOptions{City: "Malibu"})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if !resp.IsValid() {
//	        code, _ := resp.ErrorCode()
//	        log.Fatalf("search failed: %d %s", resp.StatusCode(), code)
//	    }
//	    results, _ := resp.ResponseData()
//	    fmt.Println(results)
//	}
//
// # Configuration
//
// The SDK is configured using a fluent builder pattern:
//
//	config := sdk.DefaultConfig().
//	    WithBaseURL("https://api.sandbox.dandb.com").
//	    WithCredentials(id, secret).
//	    WithTimeout(10 * time.Second).
//	    WithHeader("X-Request-Source", "billing")
//
// A pre-issued token skips the token endpoint entirely:
//
//	config := sdk.DefaultConfig().WithAccessToken(token)
//
// # Access Tokens
//
// Without a TokenCache every API call first requests a new access token.
// With one, the token is stored under Config.TokenCacheKey for
// Config.TokenCacheTTL and reused until the cache drops it:
//
//	config.WithTokenCache(sdk.NewMemoryTokenCache())
//
// The SDK never evicts or refreshes a cached token. If the API starts
// rejecting it, delete the key through your cache.
//
// # Responses and Errors
//
// Every request that returns a JSON object yields a *Response, whatever
// its status. Business failures (a non-200 meta.code, an error list, an
// error_code) are data on the Response:
//
//	if resp.HasErrorCode("USER_TOKEN_EXPIRED") {
//	    // refresh the user token
//	}
//
// Errors are reserved for requests that produced no envelope:
//
//	if errors.Is(err, sdk.ErrTimeout) {
//	    // the request timed out
//	}
//	var apiErr *sdk.APIError
//	if errors.As(err, &apiErr) {
//	    // HTTP error status with a body that is not an envelope
//	}
//
// The SDK never retries.
//
// # Observability
//
// Monitor SDK operations using the Observer interface. MetricsCollector
// is an in-memory implementation; CompositeObserver fans out to several:
//
//	metrics := sdk.NewMetricsCollector()
//	config.WithObserver(sdk.NewCompositeObserver(metrics, myObserver))
//
// # Thread Safety
//
// The client is safe for concurrent use. Concurrent calls that miss the
// token cache each fetch a token; the last write wins.
package sdk
