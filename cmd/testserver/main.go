// Command testserver serves a deliberately vulnerable target for local sinkprobe runs.
package main

import (
	"fmt"
	"html"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// stubSanitizer mimics the DOMPurify defaults that matter for probing:
// script elements and on* attributes are removed
const stubSanitizer = `window.DOMPurify = {
	sanitize: function (input) {
		var t = document.createElement("template");
		t.innerHTML = input;
		t.content.querySelectorAll("script").forEach(function (n) { n.remove(); });
		t.content.querySelectorAll("*").forEach(function (n) {
			Array.from(n.attributes).forEach(function (a) {
				if (/^on/i.test(a.name)) n.removeAttribute(a.name);
			});
		});
		return t.innerHTML;
	}
};`

const sinkPage = `<!DOCTYPE html>
<html><head><title>sink</title></head>
<body><h1>Static sink page</h1><main id="app"></main></body></html>`

func newMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		// Vulnerable reflection
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><body><h1>Search Results</h1><p>You searched for: %s</p></body></html>", query)
	})

	mux.HandleFunc("/safe", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><body><h1>Search Results</h1><p>You searched for: %s</p></body></html>",
			html.EscapeString(r.URL.Query().Get("q")))
	})

	mux.HandleFunc("/sink", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, sinkPage)
	})

	mux.HandleFunc("/purify.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		fmt.Fprint(w, stubSanitizer)
	})

	return mux
}

func main() {
	var addr string

	cmd := &cobra.Command{
		Use:   "testserver",
		Short: "Vulnerable target for local scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info().Str("addr", addr).Msg("Vulnerable server running")
			fmt.Printf("  reflected:  http://%s/?q=PAYLOAD\n", addr)
			fmt.Printf("  escaped:    http://%s/safe?q=PAYLOAD\n", addr)
			fmt.Printf("  dom sink:   http://%s/sink\n", addr)
			fmt.Printf("  sanitizer:  http://%s/purify.js\n", addr)
			return http.ListenAndServe(addr, newMux())
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "127.0.0.1:8081", "Listen address")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
