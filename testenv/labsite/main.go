// Command labsite is a local target for end-to-end runs of sqlhunter. It
// serves a search result page in the redirect-wrapped format sqlhunter
// harvests, and item pages backed by an in-memory SQLite database, one of
// which leaks driver errors.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"html"
	"log"
	"net/http"
	"net/url"
	"strconv"

	_ "modernc.org/sqlite"
)

var db *sql.DB

func main() {
	addr := flag.String("addr", "127.0.0.1:18080", "listen address")
	flag.Parse()

	var err error
	db, err = sql.Open("sqlite", ":memory:")
	if err != nil {
		log.Fatalf("SQLite open failed: %v", err)
	}
	// One connection keeps the in-memory database alive and shared.
	db.SetMaxOpenConns(1)
	if err := seed(db); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}

	http.HandleFunc("/search", searchHandler)
	http.HandleFunc("/item", itemHandler)
	http.HandleFunc("/safe/item", safeItemHandler)
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	log.Printf("Lab site listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}

func seed(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT NOT NULL, price REAL NOT NULL)`,
		`INSERT INTO items (id, name, price) VALUES (1, 'Widget', 9.99), (2, 'Gadget', 24.50), (3, 'Gizmo', 3.75)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// searchHandler answers every query with links to the lab's item pages on
// the first page and an empty page after it.
func searchHandler(w http.ResponseWriter, r *http.Request) {
	base := "http://" + r.Host
	start, _ := strconv.Atoi(r.URL.Query().Get("start"))

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, "<html><body>\n")
	fmt.Fprintf(w, "<a href=\"/search?q=%s&start=%d\">Next</a>\n", url.QueryEscape(r.URL.Query().Get("q")), start+10)
	if start == 0 {
		for _, target := range []string{
			base + "/item?id=1",
			base + "/item?id=2",
			base + "/safe/item?id=1",
		} {
			fmt.Fprintf(w, "<a href=\"/url?q=%s&sa=U&ved=0ah\">%s</a>\n", url.QueryEscape(target), html.EscapeString(target))
		}
	}
	fmt.Fprint(w, "<a href=\"/url?q=https://www.google.com/preferences&sa=U\">Settings</a>\n")
	fmt.Fprint(w, "</body></html>\n")
}

// ==================== Vulnerable Handler ====================

func itemHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	// VULNERABLE: Direct string concatenation
	query := fmt.Sprintf("SELECT name, price FROM items WHERE id = %s", id)
	log.Printf("[SQLite] Query: %s", query)

	var (
		name  string
		price float64
	)
	err := db.QueryRow(query).Scan(&name, &price)
	switch {
	case err == sql.ErrNoRows:
		renderItem(w, "", 0)
	case err != nil:
		w.WriteHeader(http.StatusInternalServerError)
		// VULNERABLE: Error message exposed
		fmt.Fprintf(w, "<html><body><h1>Database Error</h1><p>SQL Error: %s</p></body></html>", html.EscapeString(err.Error()))
	default:
		renderItem(w, name, price)
	}
}

// ==================== Safe Handler ====================

func safeItemHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	var (
		name  string
		price float64
	)
	err := db.QueryRow("SELECT name, price FROM items WHERE id = ?", id).Scan(&name, &price)
	if err != nil && err != sql.ErrNoRows {
		log.Printf("[SQLite] safe query failed: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	renderItem(w, name, price)
}

func renderItem(w http.ResponseWriter, name string, price float64) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, "<html><body><h1>Item</h1>")
	if name == "" {
		fmt.Fprint(w, "<p>No item found.</p>")
	} else {
		fmt.Fprintf(w, "<div class='item'><p>%s</p><p>$%.2f</p></div>", html.EscapeString(name), price)
	}
	fmt.Fprint(w, "</body></html>")
}
