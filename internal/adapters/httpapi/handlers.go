package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/example/courier/internal/apperr"
	"github.com/example/courier/internal/ctxutil"
	"github.com/example/courier/internal/ports/primary"
)

// messageBody is the wire shape of a message.
type messageBody struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Content     string    `json:"content"`
	ReadStatus  bool      `json:"read_status"`
	CreatedAt   time.Time `json:"created_at"`
}

// inboxEntryBody is the wire shape of one inbox listing entry.
type inboxEntryBody struct {
	OtherUserID   string    `json:"other_user_id"`
	LastMessage   string    `json:"last_message"`
	UnreadCount   int       `json:"unread_count"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
}

type sendBody struct {
	RecipientID string `json:"recipient_id"`
	Content     string `json:"content"`
}

func toMessageBody(m *primary.Message) messageBody {
	return messageBody{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		ReadStatus:  m.Read,
		CreatedAt:   m.CreatedAt,
	}
}

// parsePage validates limit/offset query parameters. Out-of-range
// values are rejected with field detail, not clamped.
func parsePage(r *http.Request) (primary.Page, []apperr.FieldError) {
	var (
		page   primary.Page
		fields []apperr.FieldError
	)

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > primary.MaxPageLimit {
			fields = append(fields, apperr.FieldError{Field: "limit", Message: "Invalid limit"})
		} else {
			page.Limit = limit
		}
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			fields = append(fields, apperr.FieldError{Field: "offset", Message: "Invalid offset"})
		} else {
			page.Offset = offset
		}
	}

	return page, fields
}

// handleHealth reports liveness. Not enveloped; probes want it flat.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "service": "courier"})
}

// handleInbox serves GET /messages.
func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	page, fields := parsePage(r)
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	viewerID := ctxutil.ViewerFromContext(r.Context())
	entries, err := s.service.Inbox(r.Context(), primary.InboxRequest{
		ViewerID: viewerID,
		Page:     page,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	data := make([]inboxEntryBody, 0, len(entries))
	for _, e := range entries {
		data = append(data, inboxEntryBody{
			OtherUserID:   e.CounterpartID,
			LastMessage:   e.LastMessage,
			UnreadCount:   e.UnreadCount,
			LastMessageAt: e.LastMessageAt,
			CreatedAt:     e.CreatedAt,
		})
	}

	norm := page.Normalize(primary.DefaultInboxLimit)
	writeData(w, http.StatusOK, "", data, &pagination{Limit: norm.Limit, Offset: norm.Offset})
}

// handleThread serves GET /messages/{counterpartId}.
func (s *Server) handleThread(w http.ResponseWriter, r *http.Request) {
	counterpartID := mux.Vars(r)["counterpartId"]

	page, fields := parsePage(r)
	if uuid.Validate(counterpartID) != nil {
		fields = append(fields, apperr.FieldError{Field: "user_id", Message: "Invalid user ID"})
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	viewerID := ctxutil.ViewerFromContext(r.Context())
	messages, err := s.service.Thread(r.Context(), primary.ThreadRequest{
		ViewerID:      viewerID,
		CounterpartID: counterpartID,
		Page:          page,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	data := make([]messageBody, 0, len(messages))
	for _, m := range messages {
		data = append(data, toMessageBody(m))
	}

	norm := page.Normalize(primary.DefaultThreadLimit)
	writeData(w, http.StatusOK, "", data, &pagination{Limit: norm.Limit, Offset: norm.Offset})
}

// handleSend serves POST /messages.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var body sendBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFieldErrors(w, []apperr.FieldError{{Field: "body", Message: "Invalid JSON body"}})
		return
	}

	if uuid.Validate(body.RecipientID) != nil {
		writeFieldErrors(w, []apperr.FieldError{{Field: "recipient_id", Message: "Invalid recipient ID"}})
		return
	}

	viewerID := ctxutil.ViewerFromContext(r.Context())
	message, err := s.service.Send(r.Context(), primary.SendRequest{
		SenderID:    viewerID,
		RecipientID: body.RecipientID,
		Content:     body.Content,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, "Message sent", toMessageBody(message), nil)
}

// handleDelete serves DELETE /messages/{id}.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	messageID := mux.Vars(r)["id"]
	if uuid.Validate(messageID) != nil {
		writeFieldErrors(w, []apperr.FieldError{{Field: "id", Message: "Invalid message ID"}})
		return
	}

	viewerID := ctxutil.ViewerFromContext(r.Context())
	err := s.service.Delete(r.Context(), primary.DeleteRequest{
		RequesterID: viewerID,
		MessageID:   messageID,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, "Message deleted", nil, nil)
}
