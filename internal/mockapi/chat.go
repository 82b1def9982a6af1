package mockapi

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	httpmiddleware "github.com/wolfman30/medcare-portal/internal/http/middleware"
)

const anonymousSender = "anonymous"

type chatStore struct {
	mu            sync.Mutex
	conversations *Collection
	messages      *Collection
}

func newChatStore(now func() time.Time) *chatStore {
	return &chatStore{conversations: newCollection(now), messages: newCollection(now)}
}

// conversationFor returns the id of the conversation between two
// participants, creating it on first contact.
func (c *chatStore) conversationFor(sender, receiver string) string {
	for _, conv := range c.conversations.All() {
		members, _ := conv["participants"].([]any)
		if len(members) == 2 && ((members[0] == sender && members[1] == receiver) || (members[0] == receiver && members[1] == sender)) {
			return conv["_id"].(string)
		}
	}
	conv := c.conversations.Insert(Record{"participants": []any{sender, receiver}, "unreadCount": float64(0)})
	return conv["_id"].(string)
}

func (s *Server) chatRoutes(r chi.Router) {
	r.Post("/", s.sendMessage)
	r.Get("/conversations", s.listConversations)
	r.Get("/conversations/{id}/messages", s.listMessages)
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConversationID string   `json:"conversationId"`
		ReceiverID     string   `json:"receiverId"`
		Content        string   `json:"content"`
		Attachments    []string `json:"attachments"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Content) == "" && len(req.Attachments) == 0 {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	sender := anonymousSender
	if claims, ok := httpmiddleware.ClaimsFromContext(r.Context()); ok && claims.Subject != "" {
		sender = claims.Subject
	}

	s.chat.mu.Lock()
	defer s.chat.mu.Unlock()

	convID := req.ConversationID
	receiver := req.ReceiverID
	if convID == "" {
		if receiver == "" {
			writeError(w, http.StatusBadRequest, "conversationId or receiverId is required")
			return
		}
		convID = s.chat.conversationFor(sender, receiver)
	} else if _, ok := s.chat.conversations.Get(convID); !ok {
		writeError(w, http.StatusBadRequest, "unknown conversation")
		return
	}

	attachments := make([]any, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, a)
	}
	msg := s.chat.messages.Insert(Record{
		"conversationId": convID,
		"sender":         sender,
		"receiver":       receiver,
		"content":        req.Content,
		"attachments":    attachments,
		"isRead":         false,
	})
	s.chat.conversations.Update(convID, Record{"lastMessage": msg})
	writeEnvelope(w, http.StatusCreated, msg, "sent")
}

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	lq, err := parseListQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	convs := s.chat.conversations.All()
	sort.SliceStable(convs, func(i, j int) bool {
		a, _ := convs[i]["updatedAt"].(string)
		b, _ := convs[j]["updatedAt"].(string)
		return a > b
	})
	page, info := paginate(convs, lq.page, lq.limit)
	writePage(w, page, info)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	lq, err := parseListQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	msgs, _ := filterRecords(s.chat.messages.All(), map[string]any{"conversationId": chi.URLParam(r, "id")})
	page, info := paginate(msgs, lq.page, lq.limit)
	writePage(w, page, info)
}
