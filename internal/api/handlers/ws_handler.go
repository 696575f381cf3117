package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/villageofwisdom/genius-backend/internal/api/middleware"
	"github.com/villageofwisdom/genius-backend/internal/cache"
	"github.com/villageofwisdom/genius-backend/internal/genius"
	"github.com/villageofwisdom/genius-backend/internal/models"
	"github.com/villageofwisdom/genius-backend/internal/services"
)

const (
	// turnLockTTL bounds how long a crashed turn can keep its conversation
	// locked.
	turnLockTTL = 2 * time.Minute

	// fallbackChunkPause lets the client render the synthesized chunk before
	// stream_end arrives on the no-visible-chunks path.
	fallbackChunkPause = 80 * time.Millisecond

	msgNotSignedIn      = "You must be signed in to perform this action"
	msgInvalidToken     = "Invalid token"
	msgConversationID   = "Conversation ID required"
	msgConversationMiss = "Conversation not found"
	msgNotJoined        = "Not joined to a conversation"
	msgBadFormat        = "Invalid message format"
	msgAlreadyComplete  = "This profile is already complete. No further messages can be sent."
	msgTurnInFlight     = "Your previous message is still being answered. One moment, please."
	msgGenerationFailed = "I'm having trouble responding right now. Please try again."
)

type WSHandler struct {
	conversations services.ConversationService
	profiles      services.ProfileService
	interviews    services.InterviewService
	locks         cache.ConversationLocker
	log           *logrus.Logger
	jwtSecret     []byte
	upgrader      websocket.Upgrader
}

func NewWSHandler(
	conversations services.ConversationService,
	profiles services.ProfileService,
	interviews services.InterviewService,
	locks cache.ConversationLocker,
	log *logrus.Logger,
	jwtSecret []byte,
) *WSHandler {
	return &WSHandler{
		conversations: conversations,
		profiles:      profiles,
		interviews:    interviews,
		locks:         locks,
		log:           log,
		jwtSecret:     jwtSecret,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsClientMsg struct {
	Type    string `json:"type"`
	Payload struct {
		Token          string `json:"token"`
		ConversationID string `json:"conversationId"`
		Text           string `json:"text"`
	} `json:"payload"`
}

type wsServerMsg struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// wsConn serializes writes and remembers when the peer is gone so a turn in
// flight can finish its persistence without sending into a dead socket.
type wsConn struct {
	c      *websocket.Conn
	mu     sync.Mutex
	closed bool
}

func (w *wsConn) send(typ string, payload any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := w.c.WriteJSON(wsServerMsg{Type: typ, Payload: payload}); err != nil {
		w.closed = true
	}
}

func (w *wsConn) sendError(message string) {
	w.send("error", gin.H{"message": message})
}

func messagePayload(m models.Message) gin.H {
	return gin.H{
		"id":         m.ID.Hex(),
		"sender":     m.Sender,
		"senderName": m.SenderName,
		"text":       m.Text,
		"timestamp":  m.Timestamp,
	}
}

// Connect upgrades the request and runs the session protocol: a join binds
// the channel to a (user, conversation) pair, after which send_message turns
// are processed one at a time.
func (h *WSHandler) Connect(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote a response in most cases
		return
	}
	defer conn.Close()

	h.log.Info("websocket connection established")

	wc := &wsConn{c: conn}
	var userID, conversationID string

	for {
		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			h.log.WithField("user_id", userID).Info("websocket connection closed")
			return
		}

		var msg wsClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			wc.sendError(msgBadFormat)
			continue
		}

		switch msg.Type {
		case "ping":
			wc.send("pong", nil)

		case "join":
			if msg.Payload.Token == "" {
				wc.sendError(msgNotSignedIn)
				return
			}
			userID = middleware.VerifyToken(h.jwtSecret, msg.Payload.Token)
			if userID == "" {
				wc.sendError(msgInvalidToken)
				return
			}
			conversationID = msg.Payload.ConversationID
			if conversationID == "" {
				wc.sendError(msgConversationID)
				return
			}

			if _, err := h.conversations.GetOwned(c.Request.Context(), conversationID, userID); err != nil {
				wc.sendError(msgConversationMiss)
				return
			}

			wc.send("joined", gin.H{"conversationId": conversationID})
			h.log.WithFields(logrus.Fields{
				"user_id":         userID,
				"conversation_id": conversationID,
			}).Info("user joined conversation")

		case "send_message":
			if userID == "" || conversationID == "" {
				wc.sendError(msgNotJoined)
				continue
			}
			h.handleTurn(wc, conversationID, msg.Payload.Text)

		default:
			h.log.WithField("type", msg.Type).Warn("unknown websocket message type")
		}
	}
}

// handleTurn is one turn of the interview: persist the user message, stream
// the guide's reply, then persist the reply and any section transition. The
// turn runs on a context detached from the connection so a dropped channel
// never aborts persistence mid-way.
func (h *WSHandler) handleTurn(wc *wsConn, conversationID, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	ctx := context.Background()
	log := h.log.WithField("conversation_id", conversationID)

	acquired, err := h.locks.TryLock(ctx, conversationID, turnLockTTL)
	if err != nil {
		// the lock is advisory; a lock-store outage must not take turns down
		log.WithError(err).Warn("conversation lock unavailable")
	} else if !acquired {
		wc.sendError(msgTurnInFlight)
		return
	} else {
		defer func() {
			if err := h.locks.Unlock(ctx, conversationID); err != nil {
				log.WithError(err).Warn("failed to release conversation lock")
			}
		}()
	}

	conv, err := h.conversations.Get(ctx, conversationID)
	if err != nil {
		// stale session: the conversation was validated at join time
		log.WithError(err).Warn("conversation lookup failed, dropping turn")
		return
	}
	profile, err := h.profiles.Get(ctx, conv.ProfileID)
	if err != nil {
		log.WithError(err).Warn("profile lookup failed, dropping turn")
		return
	}

	if profile.Status == models.ProfileComplete {
		wc.sendError(msgAlreadyComplete)
		return
	}

	// The active section is resolved once and held fixed; a concurrent turn
	// must not shift it under us after this point.
	activeSection := conv.CurrentSection
	if activeSection == "" {
		activeSection = genius.SectionOrder[0]
	}
	log = log.WithField("section", activeSection)

	sections := profile.Sections.Data()
	if sec := models.FindSection(sections, activeSection); sec != nil && sec.Status == models.SectionNotStarted {
		if err := h.profiles.MarkSectionInProgress(ctx, profile.ID, activeSection); err != nil {
			log.WithError(err).Error("failed to mark section in progress")
			wc.sendError(msgGenerationFailed)
			return
		}
	}

	userMsg, err := h.conversations.AppendUserMessage(ctx, conversationID, text)
	if err != nil {
		log.WithError(err).Error("failed to save user message")
		wc.sendError(msgGenerationFailed)
		return
	}
	wc.send("message_saved", messagePayload(userMsg))

	wc.send("generating", nil)
	stream := h.interviews.StreamReply(ctx, profile, conv, activeSection, text)
	wc.send("stream_start", nil)

	var anyChunksSent bool
	var lastDraft string
	for u := range stream.Updates() {
		if u.Delta != "" {
			anyChunksSent = true
			wc.send("stream_chunk", gin.H{"chunk": u.Delta, "fullTextSoFar": u.Reply})
		}
		if u.Draft != "" && u.Draft != lastDraft {
			lastDraft = u.Draft
			wc.send("section_draft", gin.H{"topic": activeSection, "content": u.Draft})
		}
	}

	if err := stream.Err(); err != nil {
		log.WithError(err).Error("generation stream failed")
		wc.sendError(msgGenerationFailed)
		return
	}

	raw, err := stream.FullText()
	if err != nil {
		log.WithError(err).Error("stream finished in inconsistent state")
		wc.sendError(msgGenerationFailed)
		return
	}
	reply := genius.ParseReply(raw)

	// The extractor never found the message field (non-JSON output): show
	// the parsed text as a single chunk so the client still sees a reply.
	if !anyChunksSent && reply.Message != "" {
		wc.send("stream_chunk", gin.H{"chunk": reply.Message, "fullTextSoFar": reply.Message})
		time.Sleep(fallbackChunkPause)
	}

	nextSection := ""
	if reply.SectionComplete {
		nextSection = genius.NextSection(activeSection)
		log.WithField("next_section", nextSection).Info("section completed")
	}

	aiMsg, err := h.conversations.AppendAssistantMessage(ctx, conversationID, reply.Message, nextSection)
	if err != nil {
		log.WithError(err).Error("failed to save assistant message")
		wc.sendError(msgGenerationFailed)
		return
	}
	wc.send("stream_end", messagePayload(aiMsg))

	if reply.SectionComplete {
		updated, err := h.profiles.ApplyProgress(ctx, profile.ID, activeSection, reply)
		if err != nil {
			log.WithError(err).Error("failed to apply section progress")
			wc.sendError(msgGenerationFailed)
			return
		}
		if updated != nil {
			current := nextSection
			if current == "" {
				current = activeSection
			}
			wc.send("section_complete", gin.H{
				"sections":        updated.Sections.Data(),
				"percentComplete": updated.PercentComplete,
				"overallStatus":   updated.Status,
				"currentTopic":    current,
			})
		}
	}
}
