package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auction-backend/utils"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Client message types.
const (
	MessageJoinAuction  = "join_auction"
	MessageLeaveAuction = "leave_auction"
	MessagePing         = "ping"

	messageJoined = "joined"
	messageLeft   = "left"
	messagePong   = "pong"
	messageError  = "error"
)

const (
	sendBuffer  = 256
	readLimit   = 512
	pongWait    = 60 * time.Second
	pingPeriod  = 54 * time.Second
	writeWait   = 10 * time.Second
	joinTimeout = 5 * time.Second
)

// WSMessage is the envelope of every websocket frame.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// AccessChecker decides whether a principal may join an auction's channel.
type AccessChecker func(ctx context.Context, p Principal, auctionID string) bool

// Client is one authenticated websocket connection.
type Client struct {
	ID        string
	Principal Principal
	Conn      *websocket.Conn
	Send      chan WSMessage
	Hub       *Hub

	// guarded by Hub.mutex
	rooms  map[string]bool
	closed bool
}

// Hub tracks connected clients and their auction channels and implements
// Broadcaster. Sends never block: a client whose buffer is full is dropped.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	mutex      sync.RWMutex
	access     AccessChecker
	log        *logrus.Entry
}

// NewHub creates a hub. Until SetAccessChecker is called only administrators
// may join auction channels.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        utils.Logger("ws_hub"),
	}
}

// SetAccessChecker installs the channel subscription policy.
func (h *Hub) SetAccessChecker(check AccessChecker) {
	h.mutex.Lock()
	h.access = check
	h.mutex.Unlock()
}

// NewClient binds a connection to the hub. conn may be nil in tests.
func (h *Hub) NewClient(conn *websocket.Conn, p Principal) *Client {
	return &Client{
		ID:        uuid.NewString(),
		Principal: p,
		Conn:      conn,
		Send:      make(chan WSMessage, sendBuffer),
		Hub:       h,
		rooms:     make(map[string]bool),
	}
}

// Run processes registrations until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.attach(client)
		case client := <-h.unregister:
			h.detach(client)
		case <-h.done:
			h.mutex.Lock()
			for client := range h.clients {
				h.dropLocked(client)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Stop ends Run and closes every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of clients subscribed to an auction.
func (h *Hub) RoomSize(auctionID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[auctionID])
}

func (h *Hub) attach(c *Client) {
	h.mutex.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mutex.Unlock()

	h.log.WithFields(logrus.Fields{
		"user_id": c.Principal.UserID,
		"role":    c.Principal.Role,
		"clients": total,
	}).Debug("client connected")
}

func (h *Hub) detach(c *Client) {
	h.mutex.Lock()
	h.dropLocked(c)
	total := len(h.clients)
	h.mutex.Unlock()

	h.log.WithFields(logrus.Fields{
		"user_id": c.Principal.UserID,
		"clients": total,
	}).Debug("client disconnected")
}

// dropLocked removes c everywhere and closes its Send channel once.
func (h *Hub) dropLocked(c *Client) {
	delete(h.clients, c)
	for auctionID := range c.rooms {
		if room := h.rooms[auctionID]; room != nil {
			delete(room, c)
			if len(room) == 0 {
				delete(h.rooms, auctionID)
			}
		}
	}
	c.rooms = make(map[string]bool)
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

func (h *Hub) sendLocked(c *Client, msg WSMessage) {
	if c.closed {
		return
	}
	select {
	case c.Send <- msg:
	default:
		h.log.WithField("user_id", c.Principal.UserID).Warn("dropping slow websocket client")
		h.dropLocked(c)
	}
}

// Join subscribes the client to an auction's channel if the access policy
// allows it.
func (h *Hub) Join(ctx context.Context, c *Client, auctionID string) error {
	h.mutex.RLock()
	check := h.access
	h.mutex.RUnlock()

	allowed := c.Principal.IsAdmin()
	if check != nil {
		allowed = check(ctx, c.Principal, auctionID)
	}
	if !allowed {
		return fmt.Errorf("join auction %s: %w", auctionID, ErrForbidden)
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	if c.closed {
		return nil
	}
	room := h.rooms[auctionID]
	if room == nil {
		room = make(map[*Client]bool)
		h.rooms[auctionID] = room
	}
	room[c] = true
	c.rooms[auctionID] = true
	return nil
}

// Leave unsubscribes the client from an auction's channel.
func (h *Hub) Leave(c *Client, auctionID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	delete(c.rooms, auctionID)
	if room := h.rooms[auctionID]; room != nil {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, auctionID)
		}
	}
}

func (h *Hub) broadcastAll(msg WSMessage) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		h.sendLocked(client, msg)
	}
}

func (h *Hub) broadcastRoom(auctionID string, build func(*Client) WSMessage) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.rooms[auctionID] {
		h.sendLocked(client, build(client))
	}
}

// AuctionStarted announces a started auction to every connected client.
func (h *Hub) AuctionStarted(e AuctionStartedEvent) {
	h.broadcastAll(WSMessage{Type: EventAuctionStarted, Payload: e})
}

// NewBid notifies the auction's channel of an accepted bid.
func (h *Hub) NewBid(e NewBidEvent) {
	msg := WSMessage{Type: EventNewBid, Payload: e}
	h.broadcastRoom(e.AuctionID, func(*Client) WSMessage { return msg })
}

// AuctionEnded sends the winner to administrators. Suppliers only learn that
// the auction completed; results are revealed once published.
func (h *Hub) AuctionEnded(e AuctionEndedEvent) {
	full := WSMessage{Type: EventAuctionEnded, Payload: e}
	redacted := WSMessage{Type: EventAuctionEnded, Payload: map[string]interface{}{
		"auction_id":     e.AuctionID,
		"status":         "completed",
		"results_hidden": true,
		"end_time":       e.EndTime,
	}}
	h.broadcastRoom(e.AuctionID, func(c *Client) WSMessage {
		if c.Principal.IsAdmin() {
			return full
		}
		return redacted
	})
}

// AuctionCancelled notifies the auction's channel of a cancellation.
func (h *Hub) AuctionCancelled(e AuctionCancelledEvent) {
	msg := WSMessage{Type: EventAuctionCancelled, Payload: e}
	h.broadcastRoom(e.AuctionID, func(*Client) WSMessage { return msg })
}

// HandleWebSocket authenticates the connection from its token query parameter
// and serves it until the peer disconnects.
func (h *Hub) HandleWebSocket(c *websocket.Conn) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.Close()
		return
	}

	claims, err := utils.ValidateJWT(tokenString)
	if err != nil {
		h.log.WithError(err).Debug("rejected websocket token")
		c.Close()
		return
	}

	client := h.NewClient(c, Principal{
		UserID:     claims.UserID,
		Role:       claims.Role,
		SupplierID: claims.SupplierID,
	})

	select {
	case h.register <- client:
	case <-h.done:
		c.Close()
		return
	}

	go client.writePump()
	client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(readLimit)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var message WSMessage
		err := c.Conn.ReadJSON(&message)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.WithError(err).Warn("websocket read failed")
			}
			break
		}

		c.handleMessage(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches a client frame. Subscriptions never touch auction
// state.
func (c *Client) handleMessage(message WSMessage) {
	switch message.Type {
	case MessageJoinAuction:
		auctionID := auctionIDFrom(message.Payload)
		if auctionID == "" {
			c.reply(messageError, map[string]interface{}{"message": "auction_id required"})
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), joinTimeout)
		defer cancel()
		if err := c.Hub.Join(ctx, c, auctionID); err != nil {
			c.reply(messageError, map[string]interface{}{
				"message":    "access denied",
				"auction_id": auctionID,
			})
			return
		}
		c.reply(messageJoined, map[string]interface{}{"auction_id": auctionID})

	case MessageLeaveAuction:
		auctionID := auctionIDFrom(message.Payload)
		if auctionID == "" {
			return
		}
		c.Hub.Leave(c, auctionID)
		c.reply(messageLeft, map[string]interface{}{"auction_id": auctionID})

	case MessagePing:
		c.reply(messagePong, map[string]interface{}{"timestamp": time.Now().Unix()})
	}
}

func (c *Client) reply(msgType string, payload interface{}) {
	c.Hub.mutex.Lock()
	defer c.Hub.mutex.Unlock()
	c.Hub.sendLocked(c, WSMessage{Type: msgType, Payload: payload})
}

// auctionIDFrom accepts either a bare id or {"auction_id": id}.
func auctionIDFrom(payload interface{}) string {
	switch p := payload.(type) {
	case string:
		return p
	case map[string]interface{}:
		if id, ok := p["auction_id"].(string); ok {
			return id
		}
		if id, ok := p["auctionId"].(string); ok {
			return id
		}
	}
	return ""
}
