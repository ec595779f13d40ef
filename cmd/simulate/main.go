package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

// Drives two seeded devices through a concurrent-edit scenario against a
// running server: both open the same entry, the tablet saves first, then the
// phone's stale save is rejected and its session receives the revision push.
// Run cmd/seed first; the device ids printed there go into the env below.

var (
	baseURL     = envOr("SIM_BASE_URL", "http://localhost:3000/api")
	phoneID     = os.Getenv("SIM_PHONE_ID")
	tabletID    = os.Getenv("SIM_TABLET_ID")
	phoneToken  = envOr("SIM_PHONE_TOKEN", "demo-phone-token")
	tabletToken = envOr("SIM_TABLET_TOKEN", "demo-tablet-token")
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func main() {
	if phoneID == "" || tabletID == "" {
		log.Fatal("Set SIM_PHONE_ID and SIM_TABLET_ID (printed by cmd/seed)")
	}

	color.Cyan("=== Two-device conflict simulation ===")

	phone := login(phoneID, phoneToken)
	tablet := login(tabletID, tabletToken)
	color.Green("Both devices logged in")

	entryID := firstEntryID(phone)
	color.Cyan("Editing entry %s on both devices", entryID)

	openSession(phone, entryID)
	openSession(tablet, entryID)

	// Tablet edits and saves first.
	patchTitle(tablet, "Trip notes (tablet edit)")
	saveSession(tablet, "tablet")

	// Give the revision push a moment to reach the phone's session.
	time.Sleep(500 * time.Millisecond)

	// Phone edits on what is now a stale version and saves.
	patchTitle(phone, "Trip notes (phone edit)")
	saveSession(phone, "phone")

	state := sessionState(phone)
	color.Cyan("Phone session after the dust settles: %s", state)

	color.Green("Done. Check /notifications on the phone for the conflict signal.")
}

func login(deviceID, token string) string {
	body, _ := json.Marshal(map[string]string{"device_id": deviceID, "token": token})
	data := post("", "/device/v1/login", body)

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &res); err != nil || res.AccessToken == "" {
		log.Fatalf("Login failed for device %s", deviceID)
	}
	return res.AccessToken
}

func firstEntryID(jwt string) string {
	data := get(jwt, "/entry/v1?limit=1")

	var res struct {
		Entries []struct {
			Id string `json:"id"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(data, &res); err != nil || len(res.Entries) == 0 {
		log.Fatal("No entries found; run cmd/seed first")
	}
	return res.Entries[0].Id
}

func openSession(jwt, entryID string) {
	body, _ := json.Marshal(map[string]string{"entry_id": entryID})
	post(jwt, "/session/v1/open", body)
}

func patchTitle(jwt, title string) {
	body, _ := json.Marshal(map[string]string{"title": title})
	patch(jwt, "/session/v1/fields", body)
}

func saveSession(jwt, label string) {
	req, _ := http.NewRequest("POST", baseURL+"/session/v1/save", nil)
	req.Header.Set("Authorization", "Bearer "+jwt)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Save request failed: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusOK {
		color.Green("%s: save succeeded: %s", label, compact(raw))
	} else {
		color.Red("%s: save rejected (%d): %s", label, resp.StatusCode, compact(raw))
	}
}

func sessionState(jwt string) string {
	return compact(get(jwt, "/session/v1/state"))
}

func get(jwt, path string) json.RawMessage {
	req, _ := http.NewRequest("GET", baseURL+path, nil)
	return do(req, jwt, path)
}

func post(jwt, path string, body []byte) json.RawMessage {
	req, _ := http.NewRequest("POST", baseURL+path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return do(req, jwt, path)
}

func patch(jwt, path string, body []byte) json.RawMessage {
	req, _ := http.NewRequest("PATCH", baseURL+path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return do(req, jwt, path)
}

func do(req *http.Request, jwt, path string) json.RawMessage {
	if jwt != "" {
		req.Header.Set("Authorization", "Bearer "+jwt)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Request %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		log.Fatalf("Request %s returned %d: %s", path, resp.StatusCode, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Fatalf("Request %s returned malformed body: %s", path, raw)
	}
	return env.Data
}

func compact(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
