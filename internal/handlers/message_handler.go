package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/openldn/inbox/internal/models"
	"github.com/openldn/inbox/internal/repositories"
)

// MessageHandler serves the inbox endpoints: listing, creating and fetching
// announcements.
type MessageHandler struct {
	messageRepository repositories.MessageRepository
	idRoot            string
}

// NewMessageHandler creates a new MessageHandler. idRoot is the external
// base URL every @id is built from.
func NewMessageHandler(messageRepo repositories.MessageRepository, idRoot string) *MessageHandler {
	return &MessageHandler{
		messageRepository: messageRepo,
		idRoot:            idRoot,
	}
}

// RegisterMessageRoutes registers the inbox routes. The rate limiter guards
// only the write endpoint.
func (h *MessageHandler) RegisterMessageRoutes(e *echo.Echo, rateLimit echo.MiddlewareFunc) {
	e.GET("/messages", h.ListMessages)
	e.POST("/messages", h.CreateMessage, rateLimit)
	e.GET("/id/:noteId", h.GetMessage)
	e.PUT("/messages", h.RejectPut)
	e.DELETE("/messages", h.RejectDelete)
}

func (h *MessageHandler) messageID(key string) string {
	return h.idRoot + "/id/" + key
}

// ListMessages returns all announcements matching the optional target, type
// and motivation filters, wrapped in an LDP container.
func (h *MessageHandler) ListMessages(c echo.Context) error {
	target := c.QueryParam("target")
	query := repositories.Query{
		Target:     target,
		Type:       c.QueryParam("type"),
		Motivation: c.QueryParam("motivation"),
	}

	stored, err := h.messageRepository.Find(c.Request().Context(), query)
	if err != nil {
		log.Printf("Error fetching messages: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch messages"})
	}

	contains := make([]models.Announcement, 0, len(stored))
	for _, msg := range stored {
		contains = append(contains, models.Present(msg.Data, h.messageID(msg.Key)))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"@context": models.LDPContext,
		"@type":    models.ContainerType,
		"@id":      h.idRoot + "/messages?target=" + target,
		"contains": contains,
	})
}

// CreateMessage accepts a new announcement, stamps server metadata and
// persists it.
func (h *MessageHandler) CreateMessage(c echo.Context) error {
	var announcement models.Announcement
	if err := c.Bind(&announcement); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	if _, ok := announcement["@id"]; ok {
		// New announcements must not carry an identity; @id is assigned here.
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Property '@id' indicates this is not a new announcement.",
		})
	}
	if !hasMotivation(announcement) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Announcements without 'motivation' are not allowed on this server.",
		})
	}

	if _, ok := announcement["@context"]; !ok {
		announcement["@context"] = models.LDPContext
	}

	now := time.Now().UTC()
	announcement["published"] = now.Format(time.RFC3339)

	meta := models.RequestMeta{
		IP:         clientIP(c),
		Referrer:   headerOr(c.Request().Referer(), "direct"),
		UserAgent:  headerOr(c.Request().UserAgent(), "unknown"),
		ReceivedAt: now,
	}

	key, err := h.messageRepository.Insert(c.Request().Context(), announcement, meta)
	if err != nil {
		log.Printf("Error creating message: %v", err)
		if errors.Is(err, repositories.ErrUnavailable) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "Inbox store is unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create message"})
	}

	log.Printf("Created: %s", key)
	return c.JSON(http.StatusCreated, models.Present(announcement, h.messageID(key)))
}

// GetMessage fetches a single announcement by storage key. Malformed and
// unknown keys get the same answer.
func (h *MessageHandler) GetMessage(c echo.Context) error {
	noteID := c.Param("noteId")

	msg, err := h.messageRepository.FindOne(c.Request().Context(), noteID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			log.Printf("Error fetching message %s: %v", noteID, err)
		}
		return c.JSON(http.StatusNotFound, echo.Map{"error": "No message found"})
	}

	return c.JSON(http.StatusOK, models.Present(msg, h.messageID(noteID)))
}

// RejectPut answers every update attempt.
func (h *MessageHandler) RejectPut(c echo.Context) error {
	return c.JSON(http.StatusMethodNotAllowed, echo.Map{"error": "PUT is not implemented for this inbox."})
}

// RejectDelete answers every delete attempt.
func (h *MessageHandler) RejectDelete(c echo.Context) error {
	return c.JSON(http.StatusMethodNotAllowed, echo.Map{"error": "DELETE is not implemented for this inbox."})
}

// hasMotivation checks the required motivation field is present and, when a
// string, non-empty. JSON-LD allows array motivations, which pass as-is.
func hasMotivation(announcement models.Announcement) bool {
	v, ok := announcement["motivation"]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return s != ""
	}
	return true
}

func clientIP(c echo.Context) string {
	if ip := c.RealIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func headerOr(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
