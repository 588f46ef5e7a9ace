package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"taskboard/internal/model"
)

// TokenVerifier resolves an access token to a user id.
type TokenVerifier interface {
	Parse(token string) (uuid.UUID, error)
}

// Directory is the read access the gateway needs.
type Directory interface {
	Authorizer
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type GatewayConfig struct {
	Tokens     TokenVerifier
	Directory  Directory
	Registry   *Registry
	Publisher  Publisher
	SendBuffer int
	Logger     logrus.FieldLogger
	// CheckOrigin defaults to accepting every origin.
	CheckOrigin func(r *http.Request) bool
}

// Gateway upgrades board subscriptions and runs each connection through
// Connecting, Authenticating, Authorized, Subscribed and finally Closed.
type Gateway struct {
	tokens     TokenVerifier
	directory  Directory
	registry   *Registry
	publisher  Publisher
	sendBuffer int
	log        logrus.FieldLogger
	upgrader   websocket.Upgrader

	mu      sync.Mutex
	live    map[*session]*websocket.Conn
	closing bool
	active  sync.WaitGroup
}

const closeWait = time.Second

func NewGateway(cfg GatewayConfig) *Gateway {
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	buffer := cfg.SendBuffer
	if buffer <= 0 {
		buffer = 64
	}
	return &Gateway{
		tokens:     cfg.Tokens,
		directory:  cfg.Directory,
		registry:   cfg.Registry,
		publisher:  cfg.Publisher,
		sendBuffer: buffer,
		log:        cfg.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		live: make(map[*session]*websocket.Conn),
	}
}

// Serve handles one websocket connection for boardID. The token travels in
// the "token" query parameter. Any authentication or authorization failure
// ends in a close frame with no reason text.
func (g *Gateway) Serve(w http.ResponseWriter, r *http.Request, boardID string) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.WithError(err).Debug("websocket upgrade failed")
		return
	}
	ctx := r.Context()
	s := newSession(uuid.NewString(), g.sendBuffer)
	log := g.log.WithFields(logrus.Fields{"conn_id": s.id, "board_id": boardID})

	if !g.track(s, conn) {
		reject(conn)
		_ = conn.Close()
		return
	}
	defer func() {
		s.shutdown()
		_ = conn.Close()
		g.untrack(s)
	}()

	user, adm, ok := g.authorize(ctx, s, r.URL.Query().Get("token"), boardID, log)
	if !ok {
		reject(conn)
		return
	}
	log = log.WithField("user", user.Username)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		g.writeLoop(conn, s, log)
	}()
	defer func() {
		s.shutdown()
		<-writerDone
	}()

	greeting, err := encodeAck()
	if err != nil {
		log.WithError(err).Error("failed to encode connection ack")
		return
	}
	// The ack is queued before joining so no broadcast can overtake it.
	s.Deliver(greeting)
	if err := g.registry.Join(adm, s); err != nil {
		log.WithError(err).Warn("registry refused connection")
		reject(conn)
		return
	}
	defer g.registry.Leave(adm.BoardID(), s.id)
	if err := s.advance(Subscribed); err != nil {
		log.WithError(err).Error("connection state")
		return
	}
	log.Debug("subscriber joined")

	g.readLoop(ctx, conn, s, adm.BoardID(), user, log)
	log.Debug("subscriber left")
}

func (g *Gateway) authorize(ctx context.Context, s *session, token, rawBoardID string, log logrus.FieldLogger) (*model.User, Admission, bool) {
	if err := s.advance(Authenticating); err != nil {
		return nil, Admission{}, false
	}
	if token == "" {
		log.Debug("connection without token")
		return nil, Admission{}, false
	}
	userID, err := g.tokens.Parse(token)
	if err != nil {
		log.WithError(err).Debug("token rejected")
		return nil, Admission{}, false
	}
	user, err := g.directory.GetUser(ctx, userID)
	if err != nil {
		log.WithError(err).Debug("token user not found")
		return nil, Admission{}, false
	}

	if err := s.advance(Authorized); err != nil {
		return nil, Admission{}, false
	}
	boardID, err := uuid.Parse(rawBoardID)
	if err != nil {
		log.Debug("malformed board id")
		return nil, Admission{}, false
	}
	adm, err := Admit(ctx, g.directory, boardID, user)
	if err != nil {
		log.WithError(err).Debug("board access denied")
		return nil, Admission{}, false
	}
	return user, adm, true
}

func (g *Gateway) readLoop(ctx context.Context, conn *websocket.Conn, s *session, boardID uuid.UUID, user *model.User, log logrus.FieldLogger) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("connection dropped")
			}
			return
		}
		var msg inbound
		if err := sonic.Unmarshal(data, &msg); err != nil || msg.Action == "" {
			log.Debug("ignoring malformed client message")
			continue
		}
		g.publisher.Publish(ctx, boardID, Event{
			Kind:          msg.Action,
			Payload:       msg.Data,
			ActorUsername: user.Username,
		})
	}
}

func (g *Gateway) writeLoop(conn *websocket.Conn, s *session, log logrus.FieldLogger) {
	for {
		select {
		case <-s.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(closeWait))
			return
		case frame := <-s.send:
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.WithError(err).Debug("write failed")
				s.shutdown()
				_ = conn.Close()
				return
			}
		}
	}
}

// reject closes like any ordinary goodbye so a refused client learns nothing.
func reject(conn *websocket.Conn) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(closeWait))
}

func (g *Gateway) track(s *session, conn *websocket.Conn) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closing {
		return false
	}
	g.live[s] = conn
	g.active.Add(1)
	return true
}

func (g *Gateway) untrack(s *session) {
	g.mu.Lock()
	delete(g.live, s)
	g.mu.Unlock()
	g.active.Done()
}

// Open reports how many connections are being served.
func (g *Gateway) Open() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.live)
}

// Shutdown refuses new connections, sends a close frame on every open one
// and waits until their handlers have returned or ctx is done.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	g.closing = true
	for s, conn := range g.live {
		s.shutdown()
		// unblocks the read loop if the peer never answers the close frame
		_ = conn.SetReadDeadline(time.Now().Add(closeWait))
	}
	g.mu.Unlock()

	done := make(chan struct{})
	go func() {
		g.active.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
