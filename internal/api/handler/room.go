package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/hangmanparty/internal/api/middleware"
	"github.com/mcoot/hangmanparty/internal/api/response"
	"github.com/mcoot/hangmanparty/internal/model"
	"github.com/mcoot/hangmanparty/internal/services/room"
)

// RoomHandler handles read-only room endpoints. All room mutations go
// through the realtime event surface.
type RoomHandler struct {
	roomController room.ControllerInterface
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomController room.ControllerInterface) *RoomHandler {
	return &RoomHandler{
		roomController: roomController,
	}
}

// Get handles GET /api/rooms/{code}: the room snapshot as seen by the
// authenticated caller
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.NormalizeRoomCode(mux.Vars(r)["code"])

	rm, err := h.roomController.GetRoom(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(rm, player.ID))
}
