// load-test hammers the entry-create and submit-day endpoints to exercise
// the API under concurrent consultants.
package main

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	baseURL     = "http://localhost:8080/api/v1"
	consultants = 20
	entriesEach = 5
)

func main() {
	client := &http.Client{Timeout: 10 * time.Second}
	date := time.Now().Format("2006-01-02")

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < consultants; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			consultantID := fmt.Sprintf("load-consultant-%02d", n)

			for j := 0; j < entriesEach; j++ {
				body := fmt.Sprintf(
					`{"clientId":"load-client","entryDate":%q,"clientHours":1.5,"notes":"load test entry %d"}`,
					date, j,
				)
				if err := post(client, consultantID, baseURL+"/entries", body); err != nil {
					fmt.Printf("create failed for %s: %v\n", consultantID, err)
					return
				}
			}

			if err := post(client, consultantID, baseURL+"/days/"+date+"/submit", "{}"); err != nil {
				fmt.Printf("submit failed for %s: %v\n", consultantID, err)
			}
		}(i)
	}

	wg.Wait()
	fmt.Printf("Done: %d consultants x %d entries in %s\n", consultants, entriesEach, time.Since(start))
}

func post(client *http.Client, consultantID, url, body string) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBufferString(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Consultant-Id", consultantID)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
