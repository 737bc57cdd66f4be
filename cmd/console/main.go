package main

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/book-engine/pkg/knowledge"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    60 * time.Second,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <book.txt> <title>\n", os.Args[0])
		os.Exit(1)
	}

	text, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read book text: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Extracting book, this may take a moment...")
	book, err := createBook(client, cfg.APIBaseURL, os.Args[2], string(text))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create book: %v\n", err)
		os.Exit(1)
	}

	names := charactersByImportance(book)
	if len(names) == 0 {
		fmt.Fprintf(os.Stderr, "No playable characters were found in this text.\n")
		os.Exit(1)
	}

	fmt.Printf("\n%s: %d characters, %d locations, %d events\n\n", book.Title, len(book.Characters), len(book.Locations), len(book.Events))
	fmt.Println("Playable Characters:")
	for i, name := range names {
		c := book.Characters[name]
		fmt.Printf("  %d - %s (%s, importance %d)\n", i+1, c.Name, c.Role, c.Importance)
	}
	fmt.Print("\nSelect a character by number: ")

	var choice int
	if _, err := fmt.Scanf("%d", &choice); err != nil || choice < 1 || choice > len(names) {
		fmt.Fprintf(os.Stderr, "Invalid selection\n")
		os.Exit(1)
	}

	state, err := createSession(client, cfg.APIBaseURL, book.ID, names[choice-1], 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create session: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(cfg, client, state),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// charactersByImportance returns character names, most important first.
func charactersByImportance(book *knowledge.Book) []string {
	names := make([]string, 0, len(book.Characters))
	for name := range book.Characters {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := book.Characters[names[i]], book.Characters[names[j]]
		if a.Importance != b.Importance {
			return a.Importance > b.Importance
		}
		return a.Name < b.Name
	})
	return names
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
