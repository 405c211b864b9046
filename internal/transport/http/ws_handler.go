package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"the-pub/internal/app"
	"the-pub/internal/domain"
	"the-pub/internal/grading"
)

type WSHandler struct {
	games    *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(games *app.GameService) *WSHandler {
	return &WSHandler{
		games: games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type guessPayload struct {
	QuestionID string `json:"questionId"`
	Guess      string `json:"guess"`
}

type questionView struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
	Points int    `json:"points"`
}

type startedPayload struct {
	SessionID string              `json:"sessionId"`
	UserID    string              `json:"userId"`
	Identity  domain.IdentityKind `json:"identity"`
	GameMode  string              `json:"gameMode"`
	Questions []questionView      `json:"questions"`
}

type gradeResultPayload struct {
	QuestionID string          `json:"questionId"`
	Outcome    grading.Outcome `json:"outcome"`
	Distance   int             `json:"distance"`
	Awarded    int             `json:"awarded"`
	TotalScore int             `json:"totalScore"`
}

type finishedPayload struct {
	Score          int                    `json:"score"`
	ElapsedSeconds int                    `json:"elapsedSeconds"`
	Average        *domain.AverageSummary `json:"average,omitempty"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and runs one game session per
// connection. A connection without a userId gets a weak identity minted and
// echoed in the started payload so the client can persist it.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	gameMode := r.URL.Query().Get("game")
	if gameMode == "" {
		http.Error(w, "missing game", http.StatusBadRequest)
		return
	}

	identity := domain.NewWeakIdentity()
	if userID := r.URL.Query().Get("userId"); userID != "" {
		identity = domain.Authenticated(userID)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.games.Start(r.Context(), gameMode, identity)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	finished := false
	defer func() {
		if !finished {
			h.games.Abandon(session.ID())
		}
	}()

	// Prompts only; canonical answers never cross the wire.
	views := make([]questionView, 0, len(session.Questions()))
	for _, q := range session.Questions() {
		views = append(views, questionView{ID: q.ID, Prompt: q.Prompt, Points: q.Points})
	}
	if err := conn.WriteJSON(outboundMessage[startedPayload]{Type: "started", Payload: startedPayload{
		SessionID: session.ID(),
		UserID:    identity.UserID,
		Identity:  identity.Kind,
		GameMode:  gameMode,
		Questions: views,
	}}); err != nil {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "guess":
			var payload guessPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.writeError(conn, "invalid guess payload")
				continue
			}
			result, awarded, total, err := h.games.SubmitGuess(r.Context(), session.ID(), payload.QuestionID, payload.Guess)
			if err != nil {
				h.writeError(conn, err.Error())
				continue
			}
			if err := conn.WriteJSON(outboundMessage[gradeResultPayload]{Type: "gradeResult", Payload: gradeResultPayload{
				QuestionID: payload.QuestionID,
				Outcome:    result.Outcome,
				Distance:   result.Distance,
				Awarded:    awarded,
				TotalScore: total,
			}}); err != nil {
				return
			}
		case "finish":
			record, summary, err := h.games.Finish(r.Context(), session.ID())
			if err != nil {
				h.writeError(conn, err.Error())
				continue
			}
			finished = true
			_ = conn.WriteJSON(outboundMessage[finishedPayload]{Type: "finished", Payload: finishedPayload{
				Score:          record.Score,
				ElapsedSeconds: record.ElapsedSeconds,
				Average:        summary,
			}})
			return
		default:
			h.writeError(conn, "unsupported message type")
		}
	}
}

func (h *WSHandler) writeError(conn *websocket.Conn, message string) {
	if err := conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: message}}); err != nil {
		log.Printf("ws write error: %v", err)
	}
}
