// Monitoring Example
// This example shows how to observe SDK traffic with the built-in
// MetricsCollector and a custom Observer, and expose the numbers over HTTP.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/birbparty/dandb-go/sdk"
)

// slowRequestObserver logs requests slower than a threshold
type slowRequestObserver struct {
	sdk.NoopObserver
	threshold time.Duration
}

func (o *slowRequestObserver) OnRequestEnd(method, path string, status int, duration time.Duration, err error) {
	if duration > o.threshold {
		log.Printf("[SLOW] %s %s status=%d took %v", method, path, status, duration)
	}
	if err != nil {
		log.Printf("[ERROR] %s %s: %v", method, path, err)
	}
}

func (o *slowRequestObserver) OnTokenFetch(ok bool, duration time.Duration, err error) {
	if err == nil && !ok {
		log.Printf("[WARN] token endpoint answered without an access token")
	}
}

func main() {
	metrics := sdk.NewMetricsCollector()
	observer := sdk.NewCompositeObserver(metrics, &slowRequestObserver{threshold: 500 * time.Millisecond})

	config := sdk.DefaultConfig().
		WithCredentials(os.Getenv("DANDB_CLIENT_ID"), os.Getenv("DANDB_CLIENT_SECRET")).
		WithTokenCache(sdk.NewMemoryTokenCache()).
		WithObserver(observer)
	if baseURL := os.Getenv("DANDB_BASE_URL"); baseURL != "" {
		config = config.WithBaseURL(baseURL)
	}

	client, err := sdk.NewClient(config)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	// Expose the collected metrics as JSON
	http.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		snapshot := metrics.GetMetrics()
		// latencies are raw samples; summarize them
		if latencies, ok := snapshot["latencies"].(map[string][]time.Duration); ok {
			summary := make(map[string]string, len(latencies))
			for endpoint, samples := range latencies {
				summary[endpoint] = average(samples).String()
			}
			snapshot["latencies"] = summary
		}
		if statuses, ok := snapshot["statuses"].(map[int]int64); ok {
			byCode := make(map[string]int64, len(statuses))
			for code, n := range statuses {
				byCode[fmt.Sprint(code)] = n
			}
			snapshot["statuses"] = byCode
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snapshot)
	})

	go func() {
		log.Println("Metrics available at http://localhost:9090/metrics")
		if err := http.ListenAndServe(":9090", nil); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()

	// Generate some traffic
	ctx := context.Background()
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for i := 0; i < 12; i++ {
		resp, err := client.BusinessSearchByDUNS(ctx, "007280554")
		switch {
		case err != nil:
			log.Printf("search failed: %v", err)
		case !resp.IsValid():
			log.Printf("search rejected with status %d", resp.StatusCode())
		}
		<-ticker.C
	}

	m := metrics.GetMetrics()
	fmt.Printf("token fetches: %v, cache hit rate: %.2f\n", m["token_fetches"], m["token_cache_hit_rate"])
}

func average(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range samples {
		total += d
	}
	return total / time.Duration(len(samples))
}
