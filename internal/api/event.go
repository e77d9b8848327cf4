// ABOUTME: Transport-neutral request and response envelopes for the handlers.
// ABOUTME: Decodes loosely shaped JSON bodies and builds CORS-enabled responses.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/harperreed/liftlog/internal/models"
)

// Event is one inbound request. Body may be JSON text or a JSON string
// that itself contains JSON text.
type Event struct {
	Body                  string            `json:"body"`
	QueryStringParameters map[string]string `json:"queryStringParameters"`
}

// Response is one outbound reply with a JSON body.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// Client-facing messages.
const (
	msgInvalidJSON     = "Invalid JSON format in request body"
	msgInternalError   = "Internal server error"
	msgMessageRequired = "Message is required"
	msgUserIDRequired  = "user_id is required"
	msgSubmitUserID    = "userId is required"
	msgRetrieveFailed  = "Error retrieving workouts"
)

var errInvalidJSON = errors.New("invalid JSON body")

func defaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": "*",
	}
}

func newResponse(status int, payload any) Response {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"` + msgInternalError + `"}`)
	}
	return Response{StatusCode: status, Headers: defaultHeaders(), Body: string(body)}
}

type errorBody struct {
	Error string `json:"error"`
}

func errorResponse(status int, msg string) Response {
	return newResponse(status, errorBody{Error: msg})
}

// fields is a decoded request body.
type fields map[string]any

// decodeBody accepts an object, or a string holding an object. Empty is {}.
func decodeBody(raw string) (fields, error) {
	if strings.TrimSpace(raw) == "" {
		return fields{}, nil
	}
	v, err := decodeJSON(raw)
	if err != nil {
		return nil, err
	}
	if inner, ok := v.(string); ok {
		if strings.TrimSpace(inner) == "" {
			return fields{}, nil
		}
		if v, err = decodeJSON(inner); err != nil {
			return nil, err
		}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errInvalidJSON
	}
	return fields(obj), nil
}

func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errInvalidJSON
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errInvalidJSON
	}
	return v, nil
}

// lookup returns the first non-null value among the given names.
func (f fields) lookup(names ...string) (any, bool) {
	for _, name := range names {
		if v, ok := f[name]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// str returns the first string value among names; other types read as "".
func (f fields) str(names ...string) string {
	v, _ := f.lookup(names...)
	s, _ := v.(string)
	return s
}

// strOrQuery prefers the body and falls back to the query string.
func (f fields) strOrQuery(query map[string]string, names ...string) string {
	if s := f.str(names...); s != "" {
		return s
	}
	for _, name := range names {
		if s := query[name]; s != "" {
			return s
		}
	}
	return ""
}

// chatHistory reads role/content pairs, skipping malformed entries.
func (f fields) chatHistory() []models.ChatMessage {
	v, _ := f.lookup("chat_history", "chatHistory")
	list, _ := v.([]any)
	history := make([]models.ChatMessage, 0, len(list))
	for _, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		role, _ := obj["role"].(string)
		content, _ := obj["content"].(string)
		if content == "" {
			continue
		}
		history = append(history, models.ChatMessage{Role: role, Content: content})
	}
	return history
}

// previousWorkout reads the caller's partial record from the prior turn.
func (f fields) previousWorkout() *models.WorkoutRecord {
	v, _ := f.lookup("previous_workout", "previousWorkout")
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return models.RawWorkout(obj).Normalize()
}
