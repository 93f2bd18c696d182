package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"quizparty/internal/domain"
)

const qrSize = 256

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateRoomResponse is the response for room creation
type CreateRoomResponse struct {
	RoomCode   string `json:"roomCode"`
	InviteLink string `json:"inviteLink"`
}

// GetRoomResponse is the response for getting room info
type GetRoomResponse struct {
	RoomCode    string `json:"roomCode"`
	PlayerCount int    `json:"playerCount"`
	Phase       string `json:"phase"`
	CanJoin     bool   `json:"canJoin"`
}

// RoomExistsResponse is the response for checking if a room exists
type RoomExistsResponse struct {
	Exists bool `json:"exists"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	ActiveRooms  int `json:"activeRooms"`
	TotalPlayers int `json:"totalPlayers"`
}

// handleCreateRoom handles POST /api/rooms
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, err := s.registry.CreateRoom()
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create room")
		return
	}

	s.sendSuccess(w, &CreateRoomResponse{
		RoomCode:   session.Code(),
		InviteLink: inviteLink(r, session.Code()),
	})
}

// handleGetRoom handles GET /api/rooms/:roomCode
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, err := s.registry.Lookup(ps.ByName("roomCode"))
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			s.sendError(w, http.StatusNotFound, "ROOM_NOT_FOUND", "Room not found")
		} else {
			s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		}
		return
	}

	s.sendSuccess(w, &GetRoomResponse{
		RoomCode:    session.Code(),
		PlayerCount: session.PlayerCount(),
		Phase:       session.Phase().String(),
		CanJoin:     session.CanJoin(),
	})
}

// handleRoomExists handles GET /api/rooms/:roomCode/exists
func (s *Server) handleRoomExists(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	_, err := s.registry.Lookup(ps.ByName("roomCode"))

	s.sendSuccess(w, &RoomExistsResponse{
		Exists: err == nil,
	})
}

// handleRoomQR handles GET /api/rooms/:roomCode/qr, serving a PNG QR code
// of the invite link for sharing the room
func (s *Server) handleRoomQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, err := s.registry.Lookup(ps.ByName("roomCode"))
	if err != nil {
		s.sendError(w, http.StatusNotFound, "ROOM_NOT_FOUND", "Room not found")
		return
	}

	png, err := qrcode.Encode(inviteLink(r, session.Code()), qrcode.Medium, qrSize)
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "QR_FAILED", "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.sendSuccess(w, &HealthResponse{
		Status: "ok",
	})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.sendSuccess(w, &StatsResponse{
		ActiveRooms:  s.registry.RoomCount(),
		TotalPlayers: s.registry.PlayerCount(),
	})
}

// inviteLink builds the shareable join link for a room
func inviteLink(r *http.Request, roomCode string) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/join/" + roomCode
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
