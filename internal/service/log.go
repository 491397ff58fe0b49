package service

import (
	"encoding/json"
	"log"
	"time"
)

// logEvent writes one JSON log line for best-effort failures the services
// swallow by contract (blob deletes during cascade delete, notification
// delivery). Everything else propagates as a typed error instead.
func logEvent(level, event string, fields map[string]any) {
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": level,
		"event": event,
	}
	for k, v := range fields {
		entry[k] = v
	}
	b, err := json.Marshal(entry)
	if err != nil {
		log.Printf("failed to marshal log entry: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
