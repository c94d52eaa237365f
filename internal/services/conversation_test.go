package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"delivery-log-service/internal/adapters/transcribe"
	"delivery-log-service/internal/domain"
	"delivery-log-service/internal/pending"
)

type fakeFetcher struct {
	audio []byte
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}

type fakeLog struct {
	records []*domain.DeliveryRecord
	err     error
}

func (l *fakeLog) Append(ctx context.Context, rec *domain.DeliveryRecord) error {
	if l.err != nil {
		return l.err
	}
	l.records = append(l.records, rec)
	return nil
}

const testTranscript = "client 3 delivered 50 pellets at price 2000 location matangi notes none"

func newTestConversation(logStore *fakeLog) (*Conversation, *pending.MemoryStore) {
	store := pending.NewMemoryStore()
	conv := &Conversation{
		Pending:     store,
		Media:       &fakeFetcher{audio: []byte("voice-note")},
		Transcriber: transcribe.NewMockTranscriber(map[string]string{"voice-note": testTranscript}),
		Log:         logStore,
		Now:         func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) },
	}
	return conv, store
}

func audioMessage(sender string) Inbound {
	return Inbound{
		SenderID:         sender,
		MediaCount:       1,
		MediaContentType: "audio/ogg",
		MediaURL:         "https://media.example/note",
	}
}

func TestHandleVoiceNoteThenConfirm(t *testing.T) {
	ctx := context.Background()
	logStore := &fakeLog{}
	conv, _ := newTestConversation(logStore)

	// Phase one: the reply echoes the transcript and asks for the token.
	reply := conv.Handle(ctx, audioMessage("+254700000001"))
	if reply.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200", reply.Status)
	}
	if !strings.Contains(reply.Text, testTranscript) {
		t.Fatalf("reply %q does not echo the transcript", reply.Text)
	}
	if !strings.Contains(reply.Text, ConfirmToken) {
		t.Fatalf("reply %q does not prompt for the confirmation token", reply.Text)
	}

	// Phase two: confirmation extracts, enriches, and persists the record.
	reply = conv.Handle(ctx, Inbound{SenderID: "+254700000001", Body: "1"})
	if reply.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200", reply.Status)
	}
	if len(logStore.records) != 1 {
		t.Fatalf("expected 1 logged record, got %d", len(logStore.records))
	}

	rec := logStore.records[0]
	if rec.ClientIndex != "3" {
		t.Errorf("ClientIndex = %q, want %q", rec.ClientIndex, "3")
	}
	if rec.Quantity != 50 {
		t.Errorf("Quantity = %d, want 50", rec.Quantity)
	}
	if rec.FeedType != "pellets" {
		t.Errorf("FeedType = %q, want %q", rec.FeedType, "pellets")
	}
	if rec.Price != 2000 {
		t.Errorf("Price = %d, want 2000", rec.Price)
	}
	if rec.Location != "matangi" {
		t.Errorf("Location = %q, want %q", rec.Location, "matangi")
	}
	if rec.Notes != "none" {
		t.Errorf("Notes = %q, want %q", rec.Notes, "none")
	}
	if rec.SenderID != "+254700000001" {
		t.Errorf("SenderID = %q, want sender identity", rec.SenderID)
	}
	if rec.Date != "2024-03-01" {
		t.Errorf("Date = %q, want confirmation date 2024-03-01", rec.Date)
	}
	if rec.Reminders != "Guboro: 2024-03-15; La Sota: 2024-03-22" {
		t.Errorf("Reminders = %q, want reminder pair for confirmation date", rec.Reminders)
	}
}

func TestHandleConfirmWithNothingPending(t *testing.T) {
	logStore := &fakeLog{}
	conv, _ := newTestConversation(logStore)
	fetcher := conv.Media.(*fakeFetcher)

	reply := conv.Handle(context.Background(), Inbound{SenderID: "+254700000002", Body: "1"})
	if reply.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200", reply.Status)
	}
	if reply.Text != nothingPendingReply {
		t.Fatalf("reply = %q, want nothing-pending reply", reply.Text)
	}
	if len(logStore.records) != 0 {
		t.Fatalf("log should not be called, got %d records", len(logStore.records))
	}
	if fetcher.calls != 0 {
		t.Fatalf("fetcher should not be called, got %d calls", fetcher.calls)
	}
}

func TestHandleUnparseableTranscript(t *testing.T) {
	ctx := context.Background()
	logStore := &fakeLog{}
	conv, _ := newTestConversation(logStore)

	badTranscript := "client 3 delivered 50 pellets at price 2000 notes none"
	conv.Transcriber = transcribe.NewMockTranscriber(map[string]string{"voice-note": badTranscript})

	conv.Handle(ctx, audioMessage("+254700000003"))
	reply := conv.Handle(ctx, Inbound{SenderID: "+254700000003", Body: "1"})

	if !strings.Contains(reply.Text, badTranscript) {
		t.Fatalf("parse-failure reply %q does not echo the raw transcript", reply.Text)
	}
	if len(logStore.records) != 0 {
		t.Fatalf("log must never see an unparseable record, got %d", len(logStore.records))
	}

	// The entry was consumed: a second confirmation finds nothing pending.
	reply = conv.Handle(ctx, Inbound{SenderID: "+254700000003", Body: "1"})
	if reply.Text != nothingPendingReply {
		t.Fatalf("reply = %q, want nothing-pending after consumed entry", reply.Text)
	}
}

func TestHandleMediaFetchFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	conv, store := newTestConversation(&fakeLog{})

	// Sender already awaits confirmation from an earlier note.
	_ = store.Put(ctx, "+254700000004", testTranscript)

	conv.Media = &fakeFetcher{err: errors.New("connection reset")}
	reply := conv.Handle(ctx, audioMessage("+254700000004"))

	if reply.Text != downloadErrorReply {
		t.Fatalf("reply = %q, want download-error reply", reply.Text)
	}

	// The earlier pending entry is untouched.
	text, ok, _ := store.TakeIfPresent(ctx, "+254700000004")
	if !ok || text != testTranscript {
		t.Fatalf("pending entry lost after fetch failure: ok=%v text=%q", ok, text)
	}
}

func TestHandleTranscriptionFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	conv, store := newTestConversation(&fakeLog{})

	_ = store.Put(ctx, "+254700000005", testTranscript)

	cases := []struct {
		name        string
		transcriber map[string]string
	}{
		{"provider error", map[string]string{}},                 // no entry -> error
		{"empty transcript", map[string]string{"voice-note": ""}}, // empty result
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conv.Transcriber = transcribe.NewMockTranscriber(tc.transcriber)
			reply := conv.Handle(ctx, audioMessage("+254700000005"))
			if reply.Text != transcribeErrorReply {
				t.Fatalf("reply = %q, want transcription-failure reply", reply.Text)
			}
		})
	}

	text, ok, _ := store.TakeIfPresent(ctx, "+254700000005")
	if !ok || text != testTranscript {
		t.Fatalf("pending entry lost after transcription failure: ok=%v text=%q", ok, text)
	}
}

func TestHandleNewNoteOverwritesPending(t *testing.T) {
	ctx := context.Background()
	logStore := &fakeLog{}
	conv, _ := newTestConversation(logStore)

	first := "client 1 delivered 10 crumbs price 500 location kitengela"
	second := "client 2 delivered 20 pellets price 900 location matangi"
	conv.Transcriber = transcribe.NewMockTranscriber(map[string]string{
		"note-one": first,
		"note-two": second,
	})

	conv.Media = &fakeFetcher{audio: []byte("note-one")}
	conv.Handle(ctx, audioMessage("+254700000006"))

	conv.Media = &fakeFetcher{audio: []byte("note-two")}
	conv.Handle(ctx, audioMessage("+254700000006"))

	conv.Handle(ctx, Inbound{SenderID: "+254700000006", Body: "1"})

	if len(logStore.records) != 1 {
		t.Fatalf("expected 1 logged record, got %d", len(logStore.records))
	}
	if logStore.records[0].ClientIndex != "2" {
		t.Fatalf("ClientIndex = %q, want the later note's %q", logStore.records[0].ClientIndex, "2")
	}
}

func TestHandleSaveFailureRestoresPending(t *testing.T) {
	ctx := context.Background()
	logStore := &fakeLog{err: errors.New("log unreachable")}
	conv, _ := newTestConversation(logStore)

	conv.Handle(ctx, audioMessage("+254700000007"))
	reply := conv.Handle(ctx, Inbound{SenderID: "+254700000007", Body: "1"})

	if reply.Text != saveErrorReply {
		t.Fatalf("reply = %q, want save-failure reply", reply.Text)
	}

	// Storage recovers; the restored transcript confirms cleanly.
	logStore.err = nil
	reply = conv.Handle(ctx, Inbound{SenderID: "+254700000007", Body: "1"})
	if reply.Text != loggedReply {
		t.Fatalf("reply = %q, want logged reply after retry", reply.Text)
	}
	if len(logStore.records) != 1 {
		t.Fatalf("expected 1 logged record after retry, got %d", len(logStore.records))
	}
}

func TestHandleOtherMessages(t *testing.T) {
	ctx := context.Background()
	conv, store := newTestConversation(&fakeLog{})

	_ = store.Put(ctx, "+254700000008", testTranscript)

	cases := []Inbound{
		{SenderID: "+254700000008", Body: "hello"},
		{SenderID: "+254700000008", Body: "2"},
		{SenderID: "+254700000008", Body: ""},
		{SenderID: "+254700000008", MediaCount: 1, MediaContentType: "image/jpeg", MediaURL: "https://media.example/pic"},
	}

	for i, msg := range cases {
		reply := conv.Handle(ctx, msg)
		if reply.Text != helpReply {
			t.Errorf("case %d: reply = %q, want help reply", i, reply.Text)
		}
		if reply.Status != http.StatusOK {
			t.Errorf("case %d: status = %d, want 200", i, reply.Status)
		}
	}

	// None of them disturbed the sender's state.
	text, ok, _ := store.TakeIfPresent(ctx, "+254700000008")
	if !ok || text != testTranscript {
		t.Fatalf("pending entry lost after unrelated messages: ok=%v text=%q", ok, text)
	}
}

func TestHandleConfirmTokenTrimsWhitespace(t *testing.T) {
	ctx := context.Background()
	logStore := &fakeLog{}
	conv, _ := newTestConversation(logStore)

	conv.Handle(ctx, audioMessage("+254700000010"))
	reply := conv.Handle(ctx, Inbound{SenderID: "+254700000010", Body: "  1  "})

	if reply.Text != loggedReply {
		t.Fatalf("reply = %q, want logged reply for padded token", reply.Text)
	}
}

func TestHandleMissingCollaborators(t *testing.T) {
	ctx := context.Background()

	conv, store := newTestConversation(&fakeLog{})
	conv.Transcriber = nil
	reply := conv.Handle(ctx, audioMessage("+254700000011"))
	if reply.Text != unavailableReply {
		t.Fatalf("reply = %q, want unavailable reply without a transcriber", reply.Text)
	}

	// A nil delivery log must not consume the pending entry.
	_ = store.Put(ctx, "+254700000011", testTranscript)
	conv.Log = nil
	reply = conv.Handle(ctx, Inbound{SenderID: "+254700000011", Body: "1"})
	if reply.Text != unavailableReply {
		t.Fatalf("reply = %q, want unavailable reply without a log", reply.Text)
	}
	text, ok, _ := store.TakeIfPresent(ctx, "+254700000011")
	if !ok || text != testTranscript {
		t.Fatalf("pending entry consumed despite nil log: ok=%v text=%q", ok, text)
	}
}

func TestHandleIndependentSenderSlots(t *testing.T) {
	ctx := context.Background()
	logStore := &fakeLog{}
	conv, store := newTestConversation(logStore)

	// Distinct senders each hold an independent slot.
	for i := 0; i < 5; i++ {
		sender := fmt.Sprintf("+25470000010%d", i)
		_ = store.Put(ctx, sender, testTranscript)
	}
	for i := 0; i < 5; i++ {
		sender := fmt.Sprintf("+25470000010%d", i)
		reply := conv.Handle(ctx, Inbound{SenderID: sender, Body: "1"})
		if reply.Text != loggedReply {
			t.Fatalf("sender %s: reply = %q, want logged reply", sender, reply.Text)
		}
	}
	if len(logStore.records) != 5 {
		t.Fatalf("expected 5 logged records, got %d", len(logStore.records))
	}
}
