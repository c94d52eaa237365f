package services

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"delivery-log-service/internal/domain"
	"delivery-log-service/internal/extract"
	"delivery-log-service/internal/pending"
	"delivery-log-service/internal/ports"
)

// ConfirmToken is the exact message body that confirms a pending transcript.
const ConfirmToken = "1"

// Canned replies. Each turn produces exactly one of these (or a formatted
// variant); the transport renders it into its own reply envelope.
const (
	helpReply = "Welcome! Please send a voice note with the delivery details, " +
		"or reply '1' to confirm a pending transcription."
	nothingPendingReply = "I didn't find any pending transcription to confirm. " +
		"Please send a voice note first."
	downloadErrorReply = "ERROR: Could not download the voice message. " +
		"Please try sending it again."
	transcribeErrorReply = "Sorry, I could not transcribe the voice message. " +
		"Please try recording the note again."
	unavailableReply = "The service is temporarily unavailable. Please try again shortly."
	loggedReply      = "Delivery logged! The details have been saved and the " +
		"vaccination reminders calculated."
	saveErrorReply = "ERROR: The delivery could not be saved. Your transcription " +
		"is still pending; reply '1' to retry once the log is reachable."
	parseErrorReplyFmt = "ERROR: The transcription could not be parsed into delivery " +
		"fields. Please ensure the voice note follows the expected format. " +
		"Transcription received: %s"
	heardReplyFmt = "I heard: %s\n\nTo confirm this transcription and log the " +
		"delivery, reply with " + ConfirmToken + "."
)

// Inbound is one webhook message reduced to the fields the conversation
// needs. The media fields are empty when the message carries no attachment.
type Inbound struct {
	SenderID         string
	Body             string
	MediaCount       int
	MediaContentType string
	MediaURL         string
}

// Reply is the outbound text plus the HTTP status the transport should
// return: 200 for every normal reply, 500 only for the unhandled-fault path
// owned by the API layer.
type Reply struct {
	Text   string
	Status int
}

// Conversation drives the two-phase entry flow over a stateless transport.
// Per sender there are two observable states, Idle and AwaitingConfirmation,
// represented structurally by the absence or presence of the sender's entry
// in the pending store. Collaborators are injected; the store is the only
// state shared between concurrently handled requests.
type Conversation struct {
	Pending     pending.Store
	Media       ports.MediaFetcher
	Transcriber ports.Transcriber
	Log         ports.DeliveryLog

	// Now is swappable in tests. Nil means time.Now.
	Now func() time.Time
}

// Handle routes one inbound message through the state machine and returns
// the reply for this turn. Every failure is terminal for the request and
// reported to the sender in the same turn; there are no retries here.
func (c *Conversation) Handle(ctx context.Context, msg Inbound) Reply {
	if c.Pending == nil {
		log.Printf("conversation misconfigured: pending store is nil sender=%s", msg.SenderID)
		return Reply{Text: unavailableReply, Status: http.StatusOK}
	}

	if strings.TrimSpace(msg.Body) == ConfirmToken {
		return c.confirm(ctx, msg.SenderID)
	}

	if msg.MediaCount > 0 && strings.HasPrefix(msg.MediaContentType, "audio") {
		return c.transcribeAndHold(ctx, msg)
	}

	// Anything else leaves the sender's state untouched.
	return Reply{Text: helpReply, Status: http.StatusOK}
}

// Phase one: fetch the voice note, transcribe it, and hold the raw transcript
// until the sender confirms. Both failure paths leave any pre-existing
// pending entry for the sender intact.
func (c *Conversation) transcribeAndHold(ctx context.Context, msg Inbound) Reply {
	if c.Media == nil || c.Transcriber == nil {
		log.Printf("conversation misconfigured: media or transcriber is nil sender=%s", msg.SenderID)
		return Reply{Text: unavailableReply, Status: http.StatusOK}
	}

	audio, err := c.Media.Fetch(ctx, msg.MediaURL)
	if err != nil {
		log.Printf("media fetch failed: sender=%s err=%v", msg.SenderID, err)
		return Reply{Text: downloadErrorReply, Status: http.StatusOK}
	}

	transcript, err := c.Transcriber.Transcribe(ctx, audio)
	if err != nil {
		log.Printf("transcription failed: sender=%s err=%v", msg.SenderID, err)
		return Reply{Text: transcribeErrorReply, Status: http.StatusOK}
	}
	if strings.TrimSpace(transcript) == "" {
		return Reply{Text: transcribeErrorReply, Status: http.StatusOK}
	}

	// Transition to AwaitingConfirmation. A newer note overwrites any
	// earlier unconfirmed one: at most one slot per sender, last write wins.
	if err := c.Pending.Put(ctx, msg.SenderID, transcript); err != nil {
		log.Printf("pending put failed: sender=%s err=%v", msg.SenderID, err)
		return Reply{Text: unavailableReply, Status: http.StatusOK}
	}

	return Reply{Text: fmt.Sprintf(heardReplyFmt, transcript), Status: http.StatusOK}
}

// Phase two: consume the pending transcript, extract typed fields, and
// append the confirmed record to the delivery log.
func (c *Conversation) confirm(ctx context.Context, senderID string) Reply {
	if c.Log == nil {
		// Checked before the take so the pending entry survives until the
		// log is configured.
		log.Printf("conversation misconfigured: delivery log is nil sender=%s", senderID)
		return Reply{Text: unavailableReply, Status: http.StatusOK}
	}

	transcript, ok, err := c.Pending.TakeIfPresent(ctx, senderID)
	if err != nil {
		log.Printf("pending take failed: sender=%s err=%v", senderID, err)
		return Reply{Text: unavailableReply, Status: http.StatusOK}
	}
	if !ok {
		// Idle: nothing to confirm.
		return Reply{Text: nothingPendingReply, Status: http.StatusOK}
	}

	rec, err := extract.Extract(transcript)
	if err != nil {
		// The entry stays consumed: retrying cannot fix an unparseable
		// transcript, the sender has to record a new note. The raw text is
		// echoed so they can see what went wrong.
		return Reply{Text: fmt.Sprintf(parseErrorReplyFmt, transcript), Status: http.StatusOK}
	}

	confirmedAt := c.now()
	rec.Date = confirmedAt.Format("2006-01-02")
	rec.SenderID = senderID
	rec.Reminders = domain.Reminders(confirmedAt)

	if err := c.Log.Append(ctx, &rec); err != nil {
		log.Printf("delivery append failed: sender=%s err=%v", senderID, err)
		// Restore the transcript so the sender can confirm again once
		// storage recovers instead of silently losing the delivery.
		if putErr := c.Pending.Put(ctx, senderID, transcript); putErr != nil {
			log.Printf("pending restore failed: sender=%s err=%v", senderID, putErr)
		}
		return Reply{Text: saveErrorReply, Status: http.StatusOK}
	}

	log.Printf("delivery logged: sender=%s client=%s quantity=%d feed=%q location=%q",
		senderID, rec.ClientIndex, rec.Quantity, rec.FeedType, rec.Location)

	return Reply{Text: loggedReply, Status: http.StatusOK}
}

func (c *Conversation) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
