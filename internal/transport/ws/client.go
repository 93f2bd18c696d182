package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"quizparty/internal/app"
	"quizparty/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 65536

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client represents a WebSocket client connection. A connection starts
// unbound; the join-room action attaches it to a room session.
type Client struct {
	conn     *websocket.Conn
	registry *app.Registry
	session  *app.RoomSession
	playerID string
	send     chan []byte
	done     chan struct{}
	logger   *slog.Logger
	mu       sync.Mutex
	closed   bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, registry *app.Registry, playerID string, logger *slog.Logger) *Client {
	return &Client{
		conn:     conn,
		registry: registry,
		playerID: playerID,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// GetPlayerID returns the player ID for this client
func (c *Client) GetPlayerID() string {
	return c.playerID
}

// Send implements app.ClientConnection
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped", "playerID", c.playerID)
		return nil
	}
}

// Close implements app.ClientConnection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)

	// The connection may never have been established, e.g. when a room
	// session tears down a client during registry shutdown
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.leaveRoom()
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// leaveRoom detaches the client from its room on disconnect. The
// departure is an implicit action: the session re-evaluates any turn or
// threshold the player was blocking, and the registry tears down the room
// once it is empty.
func (c *Client) leaveRoom() {
	if c.session == nil {
		return
	}

	c.session.UnregisterClient(c.playerID)
	c.session.Disconnect(c.playerID)
	c.registry.DestroyIfEmpty(c.session.Code())
	c.session = nil
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage decodes an inbound action envelope and dispatches it.
// Shape failures yield invalid-payload before any business check runs.
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ReasonInvalidPayload)
		return
	}

	switch msg.Type {
	case MsgJoinRoom:
		c.handleJoinRoom(msg.Payload)
	case MsgStartGame:
		c.handleStartGame()
	case MsgAddQuestions:
		c.handleAddQuestions(msg.Payload)
	case MsgCastVote:
		c.handleCastVote(msg.Payload)
	case MsgFinishPresentation:
		c.handleFinishPresentation()
	case MsgRestartGame:
		c.handleRestartGame()
	case MsgPing:
		c.Send(NewServerMessage(MsgPong, nil))
	default:
		c.sendError(ReasonInvalidPayload)
	}
}

// handleJoinRoom attaches the connection to a room. An empty code creates
// a fresh room with this player as host.
func (c *Client) handleJoinRoom(payload json.RawMessage) {
	var p JoinRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Username == "" {
		c.sendError(ReasonInvalidPayload)
		return
	}
	if c.session != nil {
		c.sendError(ReasonInvalidPayload)
		return
	}

	var session *app.RoomSession
	var err error

	if p.Code == "" {
		session, err = c.registry.CreateRoom()
		if err != nil {
			c.sendError(ReasonInternalError)
			return
		}
	} else {
		if !validCode(p.Code) {
			c.sendError(ReasonInvalidPayload)
			return
		}
		session, err = c.registry.Lookup(p.Code)
		if err != nil {
			c.sendError(ReasonRoomNotFound)
			return
		}
	}

	snapshot, err := session.Join(c.playerID, p.Username)
	if err != nil {
		c.sendDomainError(err)
		return
	}

	c.session = session
	session.RegisterClient(c.playerID, c)

	c.Send(NewServerMessage(MsgRoomJoined, &RoomJoinedPayload{
		Status:   "ok",
		RoomCode: snapshot.Code,
		Players:  snapshot.Players,
		Host:     snapshot.HostID,
	}))
}

// handleStartGame handles a start-game message
func (c *Client) handleStartGame() {
	if c.session == nil {
		c.sendError(ReasonRoomNotFound)
		return
	}

	if err := c.session.StartGame(c.playerID); err != nil {
		c.sendDomainError(err)
		return
	}

	c.sendAck(MsgStartGame)
}

// handleAddQuestions handles an add-questions message
func (c *Client) handleAddQuestions(payload json.RawMessage) {
	var p AddQuestionsPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Questions == nil || p.Answers == nil {
		c.sendError(ReasonInvalidPayload)
		return
	}
	if c.session == nil {
		c.sendError(ReasonRoomNotFound)
		return
	}

	if err := c.session.SubmitQuestions(c.playerID, p.Questions, p.Answers); err != nil {
		c.sendDomainError(err)
		return
	}

	c.sendAck(MsgAddQuestions)
}

// handleCastVote handles a cast-vote message
func (c *Client) handleCastVote(payload json.RawMessage) {
	var p CastVotePayload
	if err := json.Unmarshal(payload, &p); err != nil || p.TargetPlayerID == "" {
		c.sendError(ReasonInvalidPayload)
		return
	}
	if c.session == nil {
		c.sendError(ReasonRoomNotFound)
		return
	}

	if err := c.session.CastVote(c.playerID, p.TargetPlayerID); err != nil {
		c.sendDomainError(err)
		return
	}

	c.sendAck(MsgCastVote)
}

// handleFinishPresentation handles a finish-presentation message. No
// direct response is sent on success; the broadcast carries the update.
func (c *Client) handleFinishPresentation() {
	if c.session == nil {
		c.sendError(ReasonRoomNotFound)
		return
	}

	if err := c.session.FinishPresentation(c.playerID); err != nil {
		c.sendDomainError(err)
	}
}

// handleRestartGame handles a restart-game message
func (c *Client) handleRestartGame() {
	if c.session == nil {
		c.sendError(ReasonRoomNotFound)
		return
	}

	if err := c.session.ResetGame(c.playerID); err != nil {
		c.sendDomainError(err)
		return
	}

	c.sendAck(MsgRestartGame)
}

// sendDomainError maps a domain error onto the wire error taxonomy
func (c *Client) sendDomainError(err error) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		c.sendError(ReasonRoomNotFound)
	case errors.Is(err, domain.ErrPhaseClosed):
		c.sendError(ReasonPhaseClosed)
	case errors.Is(err, domain.ErrNotHost):
		c.sendError(ReasonNotHost)
	case errors.Is(err, domain.ErrTooFewPlayers):
		c.sendError(ReasonTooFewPlayers)
	case errors.Is(err, domain.ErrWrongPhase):
		c.sendError(ReasonWrongPhase)
	case errors.Is(err, domain.ErrInsufficientContent):
		c.sendError(ReasonInsufficientContent)
	case errors.Is(err, domain.ErrNotCurrentAsker):
		c.sendError(ReasonNotCurrentAsker)
	case errors.Is(err, domain.ErrRoomFull):
		c.sendError(ReasonRoomFull)
	case errors.Is(err, domain.ErrInvalidPayload), errors.Is(err, domain.ErrPlayerNotFound):
		c.sendError(ReasonInvalidPayload)
	default:
		c.sendError(ReasonInternalError)
	}
}

// sendError sends the uniform error envelope to this caller only
func (c *Client) sendError(reason string) {
	c.Send(NewServerMessage(MsgError, &ErrorPayload{
		Status: "error",
		Reason: reason,
	}))
}

// sendAck confirms a successful mutation to the caller
func (c *Client) sendAck(action MessageType) {
	c.Send(NewServerMessage(MsgAck, &AckPayload{
		Status: "ok",
		Action: action,
	}))
}

// validCode reports whether a code is 4-6 alphanumeric characters.
// Codes are case-insensitive on input.
func validCode(code string) bool {
	if len(code) < 4 || len(code) > 6 {
		return false
	}
	for _, r := range code {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}
