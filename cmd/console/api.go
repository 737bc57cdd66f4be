package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/book-engine/pkg/knowledge"
	"github.com/jwebster45206/book-engine/pkg/session"
)

type createBookRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type createSessionRequest struct {
	BookID     uuid.UUID `json:"book_id"`
	Character  string    `json:"character"`
	StartIndex int       `json:"start_index"`
	Language   string    `json:"language"`
}

type actionRequest struct {
	Action string `json:"action"`
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func decodeResponse(resp *http.Response, expectedStatus int, out any) error {
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func createBook(client *http.Client, baseURL, title, text string) (*knowledge.Book, error) {
	jsonData, err := json.Marshal(createBookRequest{Title: title, Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/books", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var book knowledge.Book
	if err := decodeResponse(resp, http.StatusCreated, &book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	return &book, nil
}

func createSession(client *http.Client, baseURL string, bookID uuid.UUID, character string, startIndex int) (*session.State, error) {
	jsonData, err := json.Marshal(createSessionRequest{
		BookID:     bookID,
		Character:  character,
		StartIndex: startIndex,
		Language:   "en",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/sessions", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var state session.State
	if err := decodeResponse(resp, http.StatusCreated, &state); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &state, nil
}

func applyAction(client *http.Client, baseURL string, sessionID uuid.UUID, action string) (*session.TurnResult, error) {
	jsonData, err := json.Marshal(actionRequest{Action: action})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		fmt.Sprintf("%s/v1/sessions/%s/action", baseURL, sessionID),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var result session.TurnResult
	if err := decodeResponse(resp, http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("failed to apply action: %w", err)
	}
	return &result, nil
}

func endSession(client *http.Client, baseURL string, sessionID uuid.UUID) error {
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/v1/sessions/%s", baseURL, sessionID), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	return nil
}
