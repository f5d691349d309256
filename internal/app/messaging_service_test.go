package app_test

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/courier/internal/adapters/sqlite"
	"github.com/example/courier/internal/apperr"
	"github.com/example/courier/internal/app"
	"github.com/example/courier/internal/db"
	"github.com/example/courier/internal/ports/primary"
)

// newTestService builds the service over an in-memory store with the
// authoritative schema.
func newTestService(t *testing.T) (*app.MessagingServiceImpl, *sql.DB) {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// One connection: each in-memory sqlite connection is its own database.
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return app.NewMessagingService(sqlite.NewStore(testDB)), testDB
}

func send(t *testing.T, svc *app.MessagingServiceImpl, sender, recipient, content string) *primary.Message {
	t.Helper()

	msg, err := svc.Send(context.Background(), primary.SendRequest{
		SenderID:    sender,
		RecipientID: recipient,
		Content:     content,
	})
	if err != nil {
		t.Fatalf("Send %s->%s failed: %v", sender, recipient, err)
	}
	return msg
}

func conversationCount(t *testing.T, testDB *sql.DB) int {
	t.Helper()

	var count int
	if err := testDB.QueryRow("SELECT COUNT(*) FROM conversations").Scan(&count); err != nil {
		t.Fatalf("failed to count conversations: %v", err)
	}
	return count
}

func TestSend_CreatesMessageAndConversation(t *testing.T) {
	svc, testDB := newTestService(t)

	msg := send(t, svc, "alice", "bob", "  hello bob  ")

	if msg.ID == "" {
		t.Error("expected a message id")
	}
	if msg.Content != "hello bob" {
		t.Errorf("expected trimmed content, got %q", msg.Content)
	}
	if msg.Read {
		t.Error("expected message to start unread")
	}
	if msg.CreatedAt.IsZero() {
		t.Error("expected server-assigned timestamp")
	}
	if got := conversationCount(t, testDB); got != 1 {
		t.Errorf("expected 1 conversation, got %d", got)
	}
}

func TestSend_BothDirectionsShareOneConversation(t *testing.T) {
	svc, testDB := newTestService(t)

	send(t, svc, "alice", "bob", "ping")
	second := send(t, svc, "bob", "alice", "pong")

	if got := conversationCount(t, testDB); got != 1 {
		t.Fatalf("expected exactly 1 conversation for the pair, got %d", got)
	}

	store := sqlite.NewStore(testDB)
	conv, err := store.Conversations().GetByPair(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("GetByPair failed: %v", err)
	}
	if !conv.LastMessageAt.Equal(second.CreatedAt) {
		t.Errorf("expected last_message_at %v (second send), got %v", second.CreatedAt, conv.LastMessageAt)
	}
}

func TestSend_ConcurrentOppositeDirections(t *testing.T) {
	svc, testDB := newTestService(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	pairs := [][2]string{{"alice", "bob"}, {"bob", "alice"}}

	for i, p := range pairs {
		wg.Add(1)
		go func(i int, sender, recipient string) {
			defer wg.Done()
			_, errs[i] = svc.Send(context.Background(), primary.SendRequest{
				SenderID:    sender,
				RecipientID: recipient,
				Content:     "racing",
			})
		}(i, p[0], p[1])
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("concurrent send %d failed: %v", i, err)
		}
	}
	if got := conversationCount(t, testDB); got != 1 {
		t.Errorf("expected exactly 1 conversation after concurrent sends, got %d", got)
	}
}

func TestSend_SelfMessageRejected(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Send(context.Background(), primary.SendRequest{
		SenderID:    "alice",
		RecipientID: "alice",
		Content:     "perfectly valid content",
	})
	if err == nil {
		t.Fatal("expected self-message to be rejected")
	}
	if apperr.KindOf(err) != apperr.KindSelfMessage {
		t.Errorf("expected KindSelfMessage, got %v", apperr.KindOf(err))
	}
}

func TestSend_ContentValidation(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantKind apperr.Kind
		wantOK   bool
	}{
		{name: "empty", content: "", wantKind: apperr.KindValidation},
		{name: "whitespace only", content: "   ", wantKind: apperr.KindValidation},
		{name: "exactly 5000", content: strings.Repeat("a", 5000), wantOK: true},
		{name: "5001 rejected", content: strings.Repeat("a", 5001), wantKind: apperr.KindValidation},
		{name: "5000 multibyte characters accepted", content: strings.Repeat("é", 5000), wantOK: true},
		{name: "5001 multibyte characters rejected", content: strings.Repeat("é", 5001), wantKind: apperr.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			_, err := svc.Send(context.Background(), primary.SendRequest{
				SenderID:    "alice",
				RecipientID: "bob",
				Content:     tt.content,
			})
			if tt.wantOK {
				if err != nil {
					t.Errorf("expected success, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected rejection")
			}
			if apperr.KindOf(err) != tt.wantKind {
				t.Errorf("expected kind %v, got %v", tt.wantKind, apperr.KindOf(err))
			}
		})
	}
}

func TestThread_OldestFirstWithinPage(t *testing.T) {
	svc, _ := newTestService(t)

	send(t, svc, "alice", "bob", "one")
	send(t, svc, "bob", "alice", "two")
	send(t, svc, "alice", "bob", "three")

	messages, err := svc.Thread(context.Background(), primary.ThreadRequest{
		ViewerID:      "alice",
		CounterpartID: "bob",
	})
	if err != nil {
		t.Fatalf("Thread failed: %v", err)
	}

	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	want := []string{"one", "two", "three"}
	for i, m := range messages {
		if m.Content != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], m.Content)
		}
	}
}

func TestThread_MarksOnlyInboundRead(t *testing.T) {
	svc, testDB := newTestService(t)
	ctx := context.Background()

	send(t, svc, "bob", "alice", "inbound one")
	send(t, svc, "bob", "alice", "inbound two")
	send(t, svc, "alice", "bob", "outbound")

	if _, err := svc.Thread(ctx, primary.ThreadRequest{ViewerID: "alice", CounterpartID: "bob"}); err != nil {
		t.Fatalf("Thread failed: %v", err)
	}

	var unreadToAlice, unreadToBob int
	if err := testDB.QueryRow(
		"SELECT COUNT(*) FROM messages WHERE recipient_id = 'alice' AND read_status = 0",
	).Scan(&unreadToAlice); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if err := testDB.QueryRow(
		"SELECT COUNT(*) FROM messages WHERE recipient_id = 'bob' AND read_status = 0",
	).Scan(&unreadToBob); err != nil {
		t.Fatalf("count failed: %v", err)
	}

	if unreadToAlice != 0 {
		t.Errorf("expected every bob->alice message read, %d still unread", unreadToAlice)
	}
	if unreadToBob != 1 {
		t.Errorf("expected alice->bob message untouched by alice's read, got %d unread", unreadToBob)
	}
}

func TestThread_PaginationGapFree(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, content := range []string{"m1", "m2", "m3", "m4", "m5"} {
		send(t, svc, "alice", "bob", content)
	}

	pageOne, err := svc.Thread(ctx, primary.ThreadRequest{
		ViewerID: "alice", CounterpartID: "bob",
		Page: primary.Page{Limit: 2, Offset: 0},
	})
	if err != nil {
		t.Fatalf("Thread failed: %v", err)
	}
	pageTwo, err := svc.Thread(ctx, primary.ThreadRequest{
		ViewerID: "alice", CounterpartID: "bob",
		Page: primary.Page{Limit: 2, Offset: 2},
	})
	if err != nil {
		t.Fatalf("Thread failed: %v", err)
	}

	if len(pageOne) != 2 || len(pageTwo) != 2 {
		t.Fatalf("expected 2+2 messages, got %d+%d", len(pageOne), len(pageTwo))
	}

	// Offset 0 holds the two newest, oldest first within the page.
	if pageOne[0].Content != "m4" || pageOne[1].Content != "m5" {
		t.Errorf("page one: expected m4, m5; got %s, %s", pageOne[0].Content, pageOne[1].Content)
	}
	if pageTwo[0].Content != "m2" || pageTwo[1].Content != "m3" {
		t.Errorf("page two: expected m2, m3; got %s, %s", pageTwo[0].Content, pageTwo[1].Content)
	}

	seen := map[string]bool{}
	for _, m := range append(pageOne, pageTwo...) {
		if seen[m.ID] {
			t.Errorf("message %s appeared in both pages", m.ID)
		}
		seen[m.ID] = true
	}
}

func TestInbox_EntriesAndUnreadCounts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	send(t, svc, "bob", "alice", "from bob")
	send(t, svc, "bob", "alice", "from bob again")
	send(t, svc, "carol", "alice", "from carol")

	entries, err := svc.Inbox(ctx, primary.InboxRequest{ViewerID: "alice"})
	if err != nil {
		t.Fatalf("Inbox failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 inbox entries, got %d", len(entries))
	}

	// Most recent activity first: carol's conversation was bumped last.
	if entries[0].CounterpartID != "carol" {
		t.Errorf("expected carol first, got %s", entries[0].CounterpartID)
	}
	if entries[0].LastMessage != "from carol" {
		t.Errorf("expected snippet 'from carol', got %q", entries[0].LastMessage)
	}
	if entries[0].UnreadCount != 1 {
		t.Errorf("expected 1 unread from carol, got %d", entries[0].UnreadCount)
	}
	if entries[1].CounterpartID != "bob" {
		t.Errorf("expected bob second, got %s", entries[1].CounterpartID)
	}
	if entries[1].UnreadCount != 2 {
		t.Errorf("expected 2 unread from bob, got %d", entries[1].UnreadCount)
	}
}

func TestInbox_UnreadCountIsLive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	send(t, svc, "bob", "alice", "unread until thread view")

	entries, err := svc.Inbox(ctx, primary.InboxRequest{ViewerID: "alice"})
	if err != nil {
		t.Fatalf("Inbox failed: %v", err)
	}
	if entries[0].UnreadCount != 1 {
		t.Fatalf("expected 1 unread before reading, got %d", entries[0].UnreadCount)
	}

	if _, err := svc.Thread(ctx, primary.ThreadRequest{ViewerID: "alice", CounterpartID: "bob"}); err != nil {
		t.Fatalf("Thread failed: %v", err)
	}

	entries, err = svc.Inbox(ctx, primary.InboxRequest{ViewerID: "alice"})
	if err != nil {
		t.Fatalf("Inbox failed: %v", err)
	}
	if entries[0].UnreadCount != 0 {
		t.Errorf("expected 0 unread after reading, got %d", entries[0].UnreadCount)
	}
}

func TestInbox_SnippetIncludesOwnMessages(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	send(t, svc, "bob", "alice", "hello")
	send(t, svc, "alice", "bob", "reply from viewer")

	entries, err := svc.Inbox(ctx, primary.InboxRequest{ViewerID: "alice"})
	if err != nil {
		t.Fatalf("Inbox failed: %v", err)
	}

	// The preview is the most recent message in either direction.
	if entries[0].LastMessage != "reply from viewer" {
		t.Errorf("expected viewer's own reply as snippet, got %q", entries[0].LastMessage)
	}
	// But the viewer's own message never counts as unread for them.
	if entries[0].UnreadCount != 1 {
		t.Errorf("expected 1 unread (bob's hello), got %d", entries[0].UnreadCount)
	}
}

func TestDelete_SenderOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	msg := send(t, svc, "alice", "bob", "to be deleted")

	err := svc.Delete(ctx, primary.DeleteRequest{RequesterID: "bob", MessageID: msg.ID})
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected KindForbidden for recipient delete, got %v", err)
	}

	// Still retrievable after the denied attempt.
	messages, err := svc.Thread(ctx, primary.ThreadRequest{ViewerID: "bob", CounterpartID: "alice"})
	if err != nil {
		t.Fatalf("Thread failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected message to survive denied delete, got %d messages", len(messages))
	}

	if err := svc.Delete(ctx, primary.DeleteRequest{RequesterID: "alice", MessageID: msg.ID}); err != nil {
		t.Fatalf("sender delete failed: %v", err)
	}

	messages, err = svc.Thread(ctx, primary.ThreadRequest{ViewerID: "bob", CounterpartID: "alice"})
	if err != nil {
		t.Fatalf("Thread failed: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("expected empty thread after delete, got %d messages", len(messages))
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Delete(context.Background(), primary.DeleteRequest{
		RequesterID: "alice",
		MessageID:   "no-such-message",
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected KindNotFound, got %v", err)
	}
}

func TestDelete_LeavesConversationTimestamp(t *testing.T) {
	svc, testDB := newTestService(t)
	ctx := context.Background()

	msg := send(t, svc, "alice", "bob", "only message")

	store := sqlite.NewStore(testDB)
	before, err := store.Conversations().GetByPair(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("GetByPair failed: %v", err)
	}

	if err := svc.Delete(ctx, primary.DeleteRequest{RequesterID: "alice", MessageID: msg.ID}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	after, err := store.Conversations().GetByPair(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("conversation should outlive its messages: %v", err)
	}
	// The stale last_message_at is documented behavior, not corrected.
	if !after.LastMessageAt.Equal(before.LastMessageAt) {
		t.Errorf("expected last_message_at unchanged, got %v -> %v", before.LastMessageAt, after.LastMessageAt)
	}
}

func TestPage_Normalize(t *testing.T) {
	tests := []struct {
		name       string
		page       primary.Page
		def        int
		wantLimit  int
		wantOffset int
	}{
		{name: "zero takes default", page: primary.Page{}, def: 50, wantLimit: 50, wantOffset: 0},
		{name: "explicit within range", page: primary.Page{Limit: 10, Offset: 5}, def: 50, wantLimit: 10, wantOffset: 5},
		{name: "over max clamps", page: primary.Page{Limit: 500}, def: 20, wantLimit: 100, wantOffset: 0},
		{name: "negative offset clamps", page: primary.Page{Limit: 10, Offset: -3}, def: 20, wantLimit: 10, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.page.Normalize(tt.def)
			if got.Limit != tt.wantLimit || got.Offset != tt.wantOffset {
				t.Errorf("Normalize() = {%d %d}, want {%d %d}", got.Limit, got.Offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
