package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/birbparty/dandb-go/sdk"
)

func main() {
	// Create a client with an in-memory token cache
	config := sdk.DefaultConfig().
		WithCredentials(os.Getenv("DANDB_CLIENT_ID"), os.Getenv("DANDB_CLIENT_SECRET")).
		WithTimeout(10 * time.Second).
		WithTokenCache(sdk.NewMemoryTokenCache())

	if baseURL := os.Getenv("DANDB_BASE_URL"); baseURL != "" {
		config = config.WithBaseURL(baseURL)
	}

	client, err := sdk.NewClient(config)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	ctx := context.Background()

	// Example 1: Resolve the access token
	fmt.Println("--- Example 1: Access Token ---")
	if _, ok, err := client.AccessToken(ctx); err != nil {
		log.Fatalf("Failed to get access token: %v", err)
	} else if !ok {
		log.Println("Warning: token endpoint returned no access token, requests will be anonymous")
	} else {
		fmt.Println("✓ Access token acquired")
	}

	// Example 2: Search by name and state
	fmt.Println("\n--- Example 2: Business Search ---")
	resp, err := client.BusinessSearchByNameAddress(ctx, "Acme Widgets", "CA", &sdk.AddressOptions{City: "Malibu"})
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}
	if !resp.IsValid() {
		errs, _ := resp.Errors()
		log.Fatalf("Search rejected (%d): %v", resp.StatusCode(), errs)
	}

	var businesses []struct {
		DUNS string `json:"duns"`
		Name string `json:"name"`
	}
	if err := resp.DecodeResults(&businesses); err != nil {
		log.Fatalf("Failed to decode results: %v", err)
	}
	for _, b := range businesses {
		fmt.Printf("✓ %s %s\n", b.DUNS, b.Name)
	}

	// Example 3: Verified profile by DUNS
	fmt.Println("\n--- Example 3: Verified Profile ---")
	if len(businesses) > 0 {
		profile, err := client.VerifiedProfileWithDUNS(ctx, businesses[0].DUNS)
		if err != nil {
			log.Fatalf("Profile lookup failed: %v", err)
		}
		if data, ok := profile.ResponseData(); ok {
			fmt.Printf("✓ Profile: %v\n", data)
		} else {
			fmt.Printf("No verified profile (status %d)\n", profile.StatusCode())
		}
	}

	// Example 4: Handle a user token error code
	fmt.Println("\n--- Example 4: Error Codes ---")
	details, err := client.UserFullDetails(ctx, "expired-token")
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	switch {
	case details.IsValid():
		fmt.Println("✓ Token still valid")
	case details.HasErrorCode("USER_TOKEN_EXPIRED"):
		fmt.Println("Token expired, refresh it with UserTokenRefresh")
	default:
		code, _ := details.ErrorCode()
		fmt.Printf("Request rejected with code %q\n", code)
	}

	fmt.Println("\n✅ All examples completed!")
}
