// One-time OAuth bootstrap for the Google Sheets ledger backend: walks the
// authorization code flow through a local redirect server and writes the
// token file the worker's sheets client reads at startup.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

const authTimeout = 5 * time.Minute

func main() {
	oauthCfg, err := google.ConfigFromJSON(clientCredentials(), sheets.SpreadsheetsScope)
	if err != nil {
		log.Fatalf("parse OAuth client: %v", err)
	}

	// The redirect URI must be registered on the OAuth client:
	// http://localhost:<port>/callback
	port := os.Getenv("OAUTH_REDIRECT_PORT")
	if port == "" {
		port = "8085"
	}
	oauthCfg.RedirectURL = "http://localhost:" + port + "/callback"

	codeCh := make(chan string, 1)
	srv := startCallbackServer(port, codeCh)

	fmt.Printf("Open this URL to authorize:\n%s\n",
		oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline))

	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt)

	select {
	case code := <-codeCh:
		token, err := oauthCfg.Exchange(context.Background(), code)
		if err != nil {
			log.Fatalf("exchange authorization code: %v", err)
		}
		saveToken(token)
	case <-time.After(authTimeout):
		srv.Close()
		log.Fatalf("authorization timed out after %v", authTimeout)
	case <-interrupted:
		srv.Close()
		log.Fatalf("interrupted")
	}
}

// clientCredentials loads the OAuth client JSON from the same variables the
// worker's sheets backend uses.
func clientCredentials() []byte {
	if inline := os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"); inline != "" {
		return []byte(inline)
	}
	path := os.Getenv("GOOGLE_OAUTH_CLIENT_FILE")
	if path == "" {
		log.Fatalf("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read OAuth client file: %v", err)
	}
	return b
}

// startCallbackServer serves the single redirect request and delivers the
// authorization code; it shuts itself down once the code arrives.
func startCallbackServer(port string, codeCh chan<- string) *http.Server {
	srv := &http.Server{Addr: ":" + port}
	http.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if errStr := r.URL.Query().Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorization received. You can close this window.")
		codeCh <- r.URL.Query().Get("code")
		go func() {
			time.Sleep(500 * time.Millisecond)
			srv.Close()
		}()
	})
	go func() { _ = srv.ListenAndServe() }()
	return srv
}

func saveToken(token *oauth2.Token) {
	outFile := os.Getenv("GOOGLE_OAUTH_TOKEN_FILE")
	if outFile == "" {
		outFile = "token.json"
	}
	f, err := os.OpenFile(outFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		log.Fatalf("open token file: %v", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(token); err != nil {
		log.Fatalf("write token: %v", err)
	}
	fmt.Printf("Saved token to %s\n", outFile)
}
