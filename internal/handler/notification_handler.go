package handler

import (
	"context"
	"os"

	"trace-journal-be/internal/pkg/logger"
	"trace-journal-be/internal/pkg/serverutils"
	"trace-journal-be/internal/service"
	internalWS "trace-journal-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NotificationHandler serves the per-device notification feed and the
// websocket the server pushes frames through: conflict signals, content
// replacements and exit-focus directives all arrive on the same socket.
type NotificationHandler struct {
	service       service.INotificationService
	deviceService service.IDeviceService
	hub           *internalWS.Hub
	logger        logger.ILogger
}

func NewNotificationHandler(
	svc service.INotificationService,
	deviceService service.IDeviceService,
	hub *internalWS.Hub,
	log logger.ILogger,
) *NotificationHandler {
	return &NotificationHandler{
		service:       svc,
		deviceService: deviceService,
		hub:           hub,
		logger:        log,
	}
}

// ServeWs upgrades the connection for a device. Browsers cannot set headers
// on websocket handshakes, so the token is accepted from the query string
// too.
func (h *NotificationHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("NotificationHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}

	deviceIDStr, ok := claims["device_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing device_id"})
	}
	deviceID, err := uuid.Parse(deviceIDStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid device ID in token"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("NotificationHandler", "WebSocket session started", map[string]interface{}{"device_id": deviceID})

			h.deviceService.TouchLastSeen(context.Background(), deviceID)
			// A blocking warning delivered while the socket was down must
			// reach the device before anything else.
			h.service.RedeliverPending(context.Background(), deviceID)

			internalWS.ServeWs(h.hub, conn, deviceID)
			h.logger.Info("NotificationHandler", "WebSocket session ended", map[string]interface{}{"device_id": deviceID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	deviceID, err := uuid.Parse(c.Locals("device_id").(string))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid device ID"})
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	notifications, total, err := h.service.List(c.UserContext(), deviceID, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"data":  notifications,
		"total": total,
		"limit": limit,
	})
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	deviceID, err := uuid.Parse(c.Locals("device_id").(string))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid device ID"})
	}

	count, err := h.service.UnreadCount(c.UserContext(), deviceID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"count": count})
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	if err := h.service.MarkAsRead(c.UserContext(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true})
}

// Acknowledge resolves a blocking warning. Until this lands the client keeps
// the warning visible; notices never pass through here.
func (h *NotificationHandler) Acknowledge(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	if err := h.service.Acknowledge(c.UserContext(), id); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	notif := router.Group("/notifications")
	notif.Use(serverutils.JwtMiddleware)
	notif.Get("/", h.GetNotifications)
	notif.Get("/unread-count", h.GetUnreadCount)
	notif.Patch("/:id/read", h.MarkAsRead)
	notif.Patch("/:id/ack", h.Acknowledge)

	// WebSocket does its own auth; the handshake cannot carry the middleware.
	router.Get("/ws", h.ServeWs)
}
