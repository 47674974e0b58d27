package controller

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"tutorlink-be/internal/dto"
	"tutorlink-be/internal/entity"
	"tutorlink-be/internal/pkg/logger"
	"tutorlink-be/internal/pkg/serverutils"
	"tutorlink-be/internal/service"
)

type IMessagingController interface {
	RegisterRoutes(r fiber.Router)
	OpenConversation(ctx *fiber.Ctx) error
	ListConversations(ctx *fiber.Ctx) error
	UpdateConversationStatus(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
	StreamMessages(ctx *fiber.Ctx) error
}

type messagingController struct {
	service service.IMessagingService
	logger  logger.ILogger
}

func NewMessagingController(service service.IMessagingService, log logger.ILogger) IMessagingController {
	return &messagingController{service: service, logger: log}
}

func (c *messagingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/conversations", serverutils.JwtMiddleware)
	h.Post("/", c.OpenConversation)
	h.Get("/", c.ListConversations)
	h.Patch("/:conversationId/status", c.UpdateConversationStatus)
	h.Post("/:conversationId/messages", c.SendMessage)
	h.Get("/:conversationId/messages", c.GetMessages)

	// The stream socket authenticates via query token, browsers cannot set
	// headers on websocket handshakes.
	r.Get("/conversations/:conversationId/stream", c.StreamMessages)
}

func (c *messagingController) OpenConversation(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromCtx(ctx)
	if err != nil {
		return err
	}

	var req dto.OpenConversationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.OpenConversation(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Conversation opened", res))
}

func (c *messagingController) ListConversations(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromCtx(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ListConversations(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Conversations fetched", res))
}

func (c *messagingController) UpdateConversationStatus(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromCtx(ctx)
	if err != nil {
		return err
	}
	conversationId, err := uuid.Parse(ctx.Params("conversationId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid conversation id")
	}

	var req dto.UpdateConversationStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.UpdateConversationStatus(ctx.Context(), conversationId, userId, entity.ConversationStatus(req.Status))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Conversation updated", res))
}

func (c *messagingController) SendMessage(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromCtx(ctx)
	if err != nil {
		return err
	}
	conversationId, err := uuid.Parse(ctx.Params("conversationId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid conversation id")
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.Context(), conversationId, userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Message sent", res))
}

func (c *messagingController) GetMessages(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromCtx(ctx)
	if err != nil {
		return err
	}
	conversationId, err := uuid.Parse(ctx.Params("conversationId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid conversation id")
	}

	var after *time.Time
	if afterStr := ctx.Query("after"); afterStr != "" {
		t, err := time.Parse(time.RFC3339, afterStr)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid 'after' timestamp, expected RFC3339")
		}
		after = &t
	}
	limit := ctx.QueryInt("limit", 50)

	res, err := c.service.GetMessages(ctx.Context(), conversationId, userId, after, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Messages fetched", res))
}

// StreamMessages upgrades to a websocket and relays the conversation's live
// change feed until the peer disconnects.
func (c *messagingController) StreamMessages(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromWsHandshake(ctx)
	if err != nil {
		return err
	}
	conversationId, err := uuid.Parse(ctx.Params("conversationId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid conversation id")
	}

	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		streamCtx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sub, err := c.service.StreamMessages(streamCtx, conversationId, userId)
		if err != nil {
			c.logger.Warn("MessagingController", "stream subscribe rejected", map[string]interface{}{
				"conversation_id": conversationId, "user_id": userId, "error": err.Error(),
			})
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "subscription refused"))
			return
		}
		defer sub.Close()

		// Reader goroutine: the socket is push-only, but reads detect the
		// peer going away so the subscription tears down.
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case event, ok := <-sub.C:
				if !ok {
					return
				}
				payload, err := json.Marshal(event)
				if err != nil {
					continue
				}
				conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			case <-streamCtx.Done():
				return
			}
		}
	})(ctx)
}
