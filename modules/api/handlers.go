package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/terminal-chat/modules/store"
)

const maxUsernameLength = 50

// healthHandler handles GET /health.
func (m *Module) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"active_rooms": m.registry.Registry().RoomCount(),
		},
	})
}

// createRoom handles POST /chatrooms: 201 with the room name, 409 when the
// name is taken.
func (m *Module) createRoom(c *fiber.Ctx) error {
	var req CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "Invalid request body",
		})
	}

	if req.RoomName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "roomName is required",
		})
	}

	room, err := m.store.Repo().CreateRoom(c.UserContext(), req.RoomName)
	if err != nil {
		if errors.Is(err, store.ErrRoomExists) {
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
				Message: "Chat room already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "Chat room creation failed",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(room.Name)
}

// listRooms handles GET /chatrooms: a JSON array of room names.
func (m *Module) listRooms(c *fiber.Ctx) error {
	names, err := m.store.Repo().ListRooms(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "Couldn't list chat rooms",
		})
	}
	return c.JSON(names)
}

// roomMessages handles GET /chatrooms/:room/messages: up to 50 messages,
// oldest first.
func (m *Module) roomMessages(c *fiber.Ctx) error {
	room := c.Params("room")

	messages, err := m.store.Repo().RecentMessages(c.UserContext(), room, store.HistoryLimit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "Couldn't fetch messages",
		})
	}
	return c.JSON(messages)
}

// mintToken handles GET /auth/tokens/:username: an opaque credential bound
// to the username, re-mintable at will.
func (m *Module) mintToken(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" || len(username) > maxUsernameLength {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "Invalid username",
		})
	}

	token, err := m.auth.Issuer().Issue(username)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "Token creation failed",
		})
	}
	return c.JSON(token)
}
