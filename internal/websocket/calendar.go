package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/trogers1052/trademind/internal/clock"
	"github.com/trogers1052/trademind/internal/journal"
	"github.com/trogers1052/trademind/internal/metrics"
	"github.com/trogers1052/trademind/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessage = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// CalendarSource loads a month of the user's calendar
type CalendarSource interface {
	Calendar(ctx context.Context, userID string, m clock.Month) (*journal.Calendar, error)
}

// Request is sent by the client to switch months
type Request struct {
	Month string `json:"month"`
}

// Message is sent to the client
type Message struct {
	Type     string            `json:"type"`
	Month    string            `json:"month,omitempty"`
	Reason   string            `json:"reason,omitempty"`
	Calendar *journal.Calendar `json:"calendar,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Message types
const (
	TypeCalendar = "calendar"
	TypeError    = "error"
)

// Handler serves the live calendar socket
type Handler struct {
	hub    *Hub
	source CalendarSource
	now    clock.Clock
	loc    *time.Location
	logger zerolog.Logger
}

// NewHandler creates a live calendar handler
func NewHandler(hub *Hub, source CalendarSource, now clock.Clock, loc *time.Location, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		source: source,
		now:    now,
		loc:    loc,
		logger: logger.With().Str("component", "live_calendar").Logger(),
	}
}

// ServeCalendar upgrades the request and streams the user's calendar. The
// current month is sent on connect, on every month request and whenever the
// user's journal changes.
func (h *Handler) ServeCalendar(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	metrics.LiveConnections.Inc()
	defer metrics.LiveConnections.Dec()

	ctx, cancel := context.WithCancel(r.Context())
	s := &session{
		handler: h,
		conn:    conn,
		userID:  userID,
		ctx:     ctx,
		send:    make(chan Message, 8),
		months:  make(chan clock.Month, 1),
		logger:  h.logger.With().Str("user_id", userID).Logger(),
	}
	events, unsubscribe := h.hub.Subscribe(userID)

	go s.writePump()
	go s.loadPump(events)
	s.requestMonth(clock.MonthOf(h.now(), h.loc))

	s.readPump()
	unsubscribe()
	s.loader.Stop()
	cancel()
	s.logger.Debug().Msg("live calendar disconnected")
}

type session struct {
	handler *Handler
	conn    *websocket.Conn
	userID  string
	ctx     context.Context
	send    chan Message
	months  chan clock.Month
	loader  LatestLoader[*journal.Calendar]
	logger  zerolog.Logger
}

// requestMonth queues m for loading, replacing any month not yet picked up
func (s *session) requestMonth(m clock.Month) {
	for {
		select {
		case s.months <- m:
			return
		default:
		}
		select {
		case <-s.months:
		default:
		}
	}
}

// readPump reads month requests until the connection fails
func (s *session) readPump() {
	s.conn.SetReadLimit(maxMessage)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var req Request
		if err := s.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn().Err(err).Msg("live calendar read failed")
			}
			return
		}
		m, err := clock.ParseMonth(req.Month)
		if err != nil {
			s.enqueue(Message{Type: TypeError, Error: err.Error()})
			continue
		}
		s.requestMonth(m)
	}
}

// loadPump starts a load for each requested month and reloads the current
// month on journal events. Loads run concurrently and the loader applies only
// the newest.
func (s *session) loadPump(events <-chan models.JournalEvent) {
	var current clock.Month
	for {
		select {
		case <-s.ctx.Done():
			return
		case m := <-s.months:
			current = m
			go s.load(m, "")
		case e := <-events:
			if current == (clock.Month{}) {
				continue
			}
			go s.load(current, e.EventType)
		}
	}
}

func (s *session) load(m clock.Month, reason string) {
	applied := s.loader.Load(s.ctx, func(ctx context.Context) (*journal.Calendar, error) {
		return s.handler.source.Calendar(ctx, s.userID, m)
	}, func(cal *journal.Calendar, err error) {
		if err != nil {
			s.logger.Error().Err(err).Str("month", m.String()).Msg("failed to load live calendar")
			s.enqueue(Message{Type: TypeError, Month: m.String(), Error: "failed to load calendar"})
			return
		}
		s.enqueue(Message{Type: TypeCalendar, Month: m.String(), Reason: reason, Calendar: cal})
	})
	if !applied {
		metrics.StaleLoads.Inc()
	}
}

func (s *session) enqueue(msg Message) {
	select {
	case s.send <- msg:
	case <-s.ctx.Done():
	}
}

// writePump owns all writes to the connection
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case <-s.ctx.Done():
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(msg); err != nil {
				s.logger.Warn().Err(err).Msg("live calendar write failed")
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
