package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/linguasigna/signaling-server/internal/registry"
	"github.com/linguasigna/signaling-server/internal/server"
	"github.com/linguasigna/signaling-server/internal/stats"
)

// supportedLanguages is the closed set of translation languages.
var supportedLanguages = []string{"asl", "gsl"}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateRoomRequest struct {
	CreatorId string `json:"creator_id"`
}

type JoinRoomRequest struct {
	RoomCode string `json:"room_code"`
	UserId   string `json:"user_id"`
}

type StartTranslationRequest struct {
	UserId   string `json:"user_id"`
	Language string `json:"language"`
}

func (s *SignalingApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func (s *SignalingApp) healthCheck(w http.ResponseWriter, _ *http.Request) {
	s.writeJson(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "linguasigna-signaling-server",
		"timestamp": time.Now().UTC(),
	})
}

func (s *SignalingApp) login(w http.ResponseWriter, r *http.Request) {
	var lr LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&lr); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if lr.Email == "" || lr.Password == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.users.GetUserByEmail(lr.Email)
	if err != nil {
		if !errors.Is(err, registry.ErrUserNotFound) {
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		// first login creates the account
		pwdHash, err := hashPassword(lr.Password)
		if err != nil {
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		user, err = s.users.CreateUser(lr.Email, pwdHash)
		if err != nil {
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	} else if !verifyPassword(user.Password, lr.Password) {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	token, err := s.createJwtForSession(user, defaultJwtExpiration)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	http.SetCookie(w, createJwtCookie(token, defaultJwtExpiration))

	s.writeJson(w, http.StatusOK, user)
}

func (s *SignalingApp) session(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.users.GetUser(userId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, registry.ErrUserNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, user)
}

func (s *SignalingApp) logout(w http.ResponseWriter, _ *http.Request) {
	// instruct browser to delete cookie by overwriting it with an expired token
	http.SetCookie(w, createJwtCookie("", time.Duration(time.Unix(0, 0).Unix())))
	w.WriteHeader(http.StatusNoContent)
}

func (s *SignalingApp) createRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, err := s.rooms.CreateRoom(req.CreatorId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, registry.ErrInvalidArgument) {
			errResp = NewBadRequestError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.stats.Incr(stats.ActiveRooms)
	s.writeJson(w, http.StatusCreated, room)
}

func (s *SignalingApp) joinRoom(w http.ResponseWriter, r *http.Request) {
	var req JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, err := s.rooms.JoinRoom(req.RoomCode, req.UserId)
	if err != nil {
		var errResp *ApiError
		switch {
		case errors.Is(err, registry.ErrRoomNotFound):
			errResp = NewNotFoundError()
		case errors.Is(err, registry.ErrRoomFull):
			errResp = NewConflictError()
		case errors.Is(err, registry.ErrInvalidArgument):
			errResp = NewBadRequestError()
		default:
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, room)
}

func (s *SignalingApp) listRooms(w http.ResponseWriter, _ *http.Request) {
	s.writeJson(w, http.StatusOK, s.rooms.ListActive())
}

func (s *SignalingApp) startTranslation(w http.ResponseWriter, r *http.Request) {
	var req StartTranslationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	language := strings.ToLower(req.Language)
	if req.UserId == "" || !slices.Contains(supportedLanguages, language) {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	session, err := s.sessions.StartSession(req.UserId, language)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.stats.Incr(stats.ActiveSessions)
	s.writeJson(w, http.StatusCreated, session)
}

func (s *SignalingApp) listTranslationSessions(w http.ResponseWriter, r *http.Request) {
	userId := r.URL.Query().Get("user_id")
	if userId == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, s.sessions.ListSessionsFor(userId))
}

func (s *SignalingApp) serverStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJson(w, http.StatusOK, map[string]any{
		"total_users":     s.users.Count(),
		"active_rooms":    len(s.rooms.ListActive()),
		"active_sessions": s.sessions.CountActive(),
		"timestamp":       time.Now().UTC(),
	})
}

func (s *SignalingApp) serveWs(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// only allow connections from allowed origins
			origin := r.Header.Get("Origin")
			if origin == "" {
				// if no origin header, allow the request
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(conn, s.relay, s.log)

	s.relay.RegisterClient(client)
	go client.Write()
	go client.Read()
}
