// settings-mock is a stand-in for the global-settings API during local
// development. It serves the calendarLocked flag from memory.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
)

type payload struct {
	CalendarLocked bool `json:"calendarLocked"`
}

func main() {
	var (
		mu     sync.Mutex
		locked = true
	)

	http.HandleFunc("/calendar-lock", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(payload{CalendarLocked: locked})
		case http.MethodPut:
			var req payload
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid body", http.StatusBadRequest)
				return
			}
			locked = req.CalendarLocked
			log.Printf("calendarLocked set to %v", locked)
			json.NewEncoder(w).Encode(req)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	log.Println("Mock settings API listening on :8081")
	log.Fatal(http.ListenAndServe(":8081", nil))
}
