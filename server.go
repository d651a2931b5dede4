package main

import (
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for WebSocket
	},
}

// session is one websocket connection. The write mutex serializes
// broadcasts and private sends onto the same conn.
type session struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
	limiter *rate.Limiter
}

func (s *session) send(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("type", msg.Type).Msg("marshal message")
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Warn().Err(err).Str("player", s.id).Msg("write message")
	}
}

// Gateway translates websocket messages into registry and room calls
// and republishes results to every subscriber of the room.
type Gateway struct {
	registry  *Registry
	scheduler *TurnScheduler
	cfg       GameConfig

	mu       sync.RWMutex
	sessions map[string]*session
	roomSubs map[string]map[string]*session
}

func NewGateway(registry *Registry, cfg GameConfig) *Gateway {
	g := &Gateway{
		registry: registry,
		cfg:      cfg,
		sessions: make(map[string]*session),
		roomSubs: make(map[string]map[string]*session),
	}
	g.scheduler = NewTurnScheduler(g.publishTick, g.handleTurnTimeout)
	return g
}

func (g *Gateway) subscribe(roomID string, sess *session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	subs, ok := g.roomSubs[roomID]
	if !ok {
		subs = make(map[string]*session)
		g.roomSubs[roomID] = subs
	}
	subs[sess.id] = sess
}

func (g *Gateway) unsubscribe(roomID, connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if subs, ok := g.roomSubs[roomID]; ok {
		delete(subs, connID)
		if len(subs) == 0 {
			delete(g.roomSubs, roomID)
		}
	}
}

func (g *Gateway) broadcast(roomID string, msg Message) {
	g.mu.RLock()
	subs := make([]*session, 0, len(g.roomSubs[roomID]))
	for _, sess := range g.roomSubs[roomID] {
		subs = append(subs, sess)
	}
	g.mu.RUnlock()

	for _, sess := range subs {
		sess.send(msg)
	}
}

func (g *Gateway) sendError(sess *session, op string, err error) {
	sess.send(Message{Type: "error", Data: errorPayload{Op: op, Message: err.Error()}})
}

// snapshot locks the room just long enough to marshal it.
func (g *Gateway) snapshot(room *Room) json.RawMessage {
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.snapshotLocked()
}

func (g *Gateway) wsHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sess := &session{
		id:      uuid.New().String(),
		conn:    conn,
		limiter: rate.NewLimiter(5, 10),
	}

	g.mu.Lock()
	g.sessions[sess.id] = sess
	g.mu.Unlock()

	log.Info().Str("player", sess.id).Msg("client connected")
	sess.send(Message{Type: "connected", Data: map[string]any{"clientId": sess.id}})

	defer g.disconnect(sess)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if !sess.limiter.Allow() {
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn().Err(err).Str("player", sess.id).Msg("bad message")
			continue
		}
		g.dispatch(sess, msg)
	}
}

func (g *Gateway) disconnect(sess *session) {
	g.mu.Lock()
	delete(g.sessions, sess.id)
	g.mu.Unlock()

	room, evicted := g.registry.RemovePlayer(sess.id)
	if evicted != "" {
		g.scheduler.Cancel(evicted)
		g.mu.Lock()
		delete(g.roomSubs, evicted)
		g.mu.Unlock()
		log.Info().Str("room", evicted).Msg("room evicted, last player left")
	}
	if room != nil {
		g.unsubscribe(room.ID, sess.id)
		g.broadcast(room.ID, Message{Type: "playerLeft", Data: roomPayload{Room: g.snapshot(room)}})
	}
	log.Info().Str("player", sess.id).Msg("client disconnected")
}

func (g *Gateway) dispatch(sess *session, msg clientMessage) {
	switch msg.Type {
	case "createRoom":
		var req createRoomRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			g.sendError(sess, msg.Type, err)
			return
		}
		g.handleCreateRoom(sess, req)

	case "joinRoom":
		var req joinRoomRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			g.sendError(sess, msg.Type, err)
			return
		}
		g.handleJoinRoom(sess, req)

	case "startGame", "startTurn", "wordCorrect", "skipWord", "endTurn":
		var req roomRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			g.sendError(sess, msg.Type, err)
			return
		}
		g.handleRoomAction(sess, msg.Type, req.RoomID)

	default:
		log.Warn().Str("type", msg.Type).Str("player", sess.id).Msg("unknown message type")
	}
}

func (g *Gateway) handleCreateRoom(sess *session, req createRoomRequest) {
	if req.Name == "" {
		req.Name = "Anonymous"
	}
	room := g.registry.CreateRoom(sess.id, req.Name)
	g.subscribe(room.ID, sess)
	log.Info().Str("room", room.ID).Str("player", sess.id).Msg("room created")
	sess.send(Message{Type: "roomCreated", Data: roomPayload{Room: g.snapshot(room)}})
}

func (g *Gateway) handleJoinRoom(sess *session, req joinRoomRequest) {
	if req.Name == "" {
		req.Name = "Anonymous"
	}
	room, err := g.registry.JoinRoom(req.RoomID, sess.id, req.Name, req.TeamID)
	if err != nil {
		g.sendError(sess, "joinRoom", err)
		return
	}
	g.subscribe(room.ID, sess)
	log.Info().Str("room", room.ID).Str("player", sess.id).Msg("player joined")
	g.broadcast(room.ID, Message{Type: "roomUpdated", Data: roomPayload{Room: g.snapshot(room)}})
}

func (g *Gateway) handleRoomAction(sess *session, op, roomID string) {
	room, ok := g.registry.Room(roomID)
	if !ok {
		g.sendError(sess, op, ErrRoomNotFound)
		return
	}

	switch op {
	case "startGame":
		room.mu.Lock()
		err := room.startGame(sess.id)
		snap := room.snapshotLocked()
		room.mu.Unlock()
		if err != nil {
			g.sendError(sess, op, err)
			return
		}
		log.Info().Str("room", roomID).Msg("game started")
		g.broadcast(roomID, Message{Type: "gameStarted", Data: roomPayload{Room: snap}})

	case "startTurn":
		room.mu.Lock()
		word, category, err := room.startTurn(sess.id)
		serial := room.turnSerial
		teamID := room.CurrentTeam
		playerName := room.CurrentPlayerName
		room.mu.Unlock()
		if err != nil {
			g.sendError(sess, op, err)
			return
		}
		// The word goes to the describer only.
		sess.send(Message{Type: "wordReceived", Data: wordPayload{Word: word, Category: category}})
		g.broadcast(roomID, Message{Type: "turnStarted", Data: turnStartedPayload{
			TeamID:        teamID,
			PlayerID:      sess.id,
			PlayerName:    playerName,
			Category:      category,
			TimeRemaining: g.cfg.TurnSeconds,
		}})
		g.scheduler.Start(roomID, serial, g.cfg.TurnSeconds)

	case "wordCorrect":
		room.mu.Lock()
		score, err := room.wordCorrect(sess.id)
		var word string
		var category Category
		var teamID int
		if err == nil {
			teamID = room.CurrentTeam
			word, category = room.nextWord()
		}
		room.mu.Unlock()
		if err != nil {
			g.sendError(sess, op, err)
			return
		}
		g.broadcast(roomID, Message{Type: "wordGuessed", Data: wordGuessedPayload{Correct: true, Score: score, TeamID: teamID}})
		sess.send(Message{Type: "wordReceived", Data: wordPayload{Word: word, Category: category}})

	case "skipWord":
		room.mu.Lock()
		err := room.skipWord(sess.id)
		var word string
		var category Category
		if err == nil {
			word, category = room.nextWord()
		}
		room.mu.Unlock()
		if err != nil {
			g.sendError(sess, op, err)
			return
		}
		sess.send(Message{Type: "wordReceived", Data: wordPayload{Word: word, Category: category}})

	case "endTurn":
		room.mu.Lock()
		outcome, err := room.endTurn(sess.id)
		if err != nil {
			room.mu.Unlock()
			g.sendError(sess, op, err)
			return
		}
		// Cancel while the room is still locked so a stale timeout
		// can never publish after this result.
		g.scheduler.Cancel(roomID)
		snap := room.snapshotLocked()
		room.mu.Unlock()
		g.publishTurnEnded(roomID, outcome, snap)
	}
}

func (g *Gateway) publishTick(roomID string, remaining int) {
	g.broadcast(roomID, Message{Type: "timerTick", Data: timerTickPayload{TimeRemaining: remaining}})
}

// handleTurnTimeout is the scheduler's expiry path. The serial check
// makes a timeout that lost the race against an explicit endTurn a
// silent no-op.
func (g *Gateway) handleTurnTimeout(roomID string, serial uint64) {
	room, ok := g.registry.Room(roomID)
	if !ok {
		return
	}

	room.mu.Lock()
	if room.turnSerial != serial {
		room.mu.Unlock()
		return
	}
	outcome, err := room.endTurn(room.CurrentPlayer)
	if err != nil {
		room.mu.Unlock()
		return
	}
	snap := room.snapshotLocked()
	room.mu.Unlock()

	g.publishTurnEnded(roomID, outcome, snap)
}

func (g *Gateway) publishTurnEnded(roomID string, outcome *TurnOutcome, snap json.RawMessage) {
	g.broadcast(roomID, Message{Type: "turnEnded", Data: turnEndedPayload{TurnOutcome: outcome, Room: snap}})
	if outcome.GameOver {
		log.Info().Str("room", roomID).Int("winner", outcome.Winner).Msg("game over")
		g.broadcast(roomID, Message{Type: "gameOver", Data: map[string]any{"winner": outcome.Winner}})
	}
}

func setupRouter(g *Gateway) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(gin.LoggerWithWriter(os.Stdout))

	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// WebSocket route
	router.GET("/ws", g.wsHandler)

	return router
}

func main() {
	setupLogger()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	registry := NewRegistry(WordSource{}, cfg.Game)
	gateway := NewGateway(registry, cfg.Game)
	router := setupRouter(gateway)

	log.Info().Str("address", cfg.Server.Address).Msg("starting server")

	if err := router.Run(cfg.Server.Address); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
