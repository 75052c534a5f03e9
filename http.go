package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/gobwas/ws"
	"github.com/google/uuid"
)

type HTTPHandler struct {
	Hub       *Hub
	Directory *Directory
	Registry  *Registry
	Invites   *InviteSigner
}

func NewHTTPServer(hub *Hub, directory *Directory, registry *Registry, invites *InviteSigner, allowedOrigins []string) http.Handler {
	httpHandler := HTTPHandler{hub, directory, registry, invites}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST"},
		AllowCredentials: false,
	}))
	r.Use(middleware.RealIP)
	r.Use(httprate.Limit(30, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint)))
	r.Use(middleware.Heartbeat("/"))

	r.Get("/ws", httpHandler.websocket())
	r.Post("/room/{roomCode}/invite", httpHandler.createInvite())
	r.Get("/invite/{token}", httpHandler.resolveInvite())
	return r
}

func (h HTTPHandler) websocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			LogErrorWhileUpgradingHTTP(err)
			return
		}
		defer conn.Close()
		c := NewClientConn(uuid.NewString(), conn)
		h.Registry.Add(c)
		logger := GetConnLogger(c.ID(), r.RemoteAddr)

		for {
			msg, err := c.ReadMessage()
			if err != nil {
				if errors.Is(err, ErrUndefinedType) {
					continue
				}
				h.Hub.Disconnect(c)
				logger.Disconnected()
				break
			}
			switch m := msg.(type) {
			case JoinRoomMessage:
				room := h.Hub.Join(c, m.CodeOrName, m.Name)
				name, _ := c.Identity()
				logger.JoinedRoom(room.Code(), name)
			case LeaveRoomMessage:
				roomCode := c.RoomCode()
				h.Hub.Leave(c, false)
				if roomCode != "" {
					logger.LeftRoom(roomCode)
				}
			case SendChatMessage:
				h.Hub.SendMessage(c, m.Text, m.ImageURL)
			case TypingMessage:
				h.Hub.SetTyping(c, m.Typing)
			case CallJoinMessage:
				h.Hub.CallJoin(c)
				logger.JoinedCall(c.RoomCode())
			case CallSignalMessage:
				h.Hub.RelaySignal(c, m.TargetID, m.Data)
			case CallLeaveMessage:
				h.Hub.CallLeave(c)
				logger.LeftCall(c.RoomCode())
			}
		}
	}
}

func (h HTTPHandler) createInvite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomCode := chi.URLParam(r, "roomCode")
		if _, exists := h.Directory.GetByCode(roomCode); !exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		token, err := h.Invites.Generate(roomCode)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"token": token})
	}
}

func (h HTTPHandler) resolveInvite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomCode := h.Invites.RoomCode(chi.URLParam(r, "token"))
		if roomCode == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		// Rooms outlive tokens within one process, so this only trips on a
		// token issued before a restart.
		if _, exists := h.Directory.GetByCode(roomCode); !exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]string{"code": roomCode})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	encoded, _ := json.Marshal(v)
	w.Write(encoded)
}
