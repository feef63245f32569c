package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/barkshad/Real-estate/internal/auth"
	"github.com/barkshad/Real-estate/internal/console"
	"github.com/barkshad/Real-estate/internal/gate"
	"github.com/barkshad/Real-estate/internal/listing"
	"github.com/barkshad/Real-estate/internal/marketplace"
	"github.com/barkshad/Real-estate/internal/models"
	"github.com/gin-gonic/gin"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const writeTimeout = 5 * time.Second

// Event is a server-to-client frame
type Event struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// clientMessage is a client-to-server frame. Which fields matter depends
// on Type.
type clientMessage struct {
	Type   string          `json:"type"`
	Filter json.RawMessage `json:"filter,omitempty"`
	Scope  string          `json:"scope,omitempty"`
	Token  string          `json:"token,omitempty"`
	PIN    string          `json:"pin,omitempty"`
}

// WSHandler serves the live listing view and the admin console
type WSHandler struct {
	Auth           *auth.Service
	Policy         auth.RolePolicy
	Listings       listing.Feed
	Inquiries      console.InquirySource
	Settings       console.SettingsSource
	AdminPIN       string
	OriginPatterns []string
}

func (h *WSHandler) accept(c *gin.Context) (*websocket.Conn, error) {
	return websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: h.OriginPatterns,
	})
}

func send(ctx context.Context, conn *websocket.Conn, ev Event) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, ev)
}

// ServeListings streams a listing view model. Browsers cannot set headers on a
// WebSocket, so the session token comes from the "token" query parameter
// or a later {"type":"auth"} message.
func (h *WSHandler) ServeListings(c *gin.Context) {
	conn, err := h.accept(c)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	s := &listingSession{
		conn:    conn,
		feed:    h.Listings,
		session: auth.NewSession(h.Policy),
		views:   make(chan listing.View, 1),
	}
	defer s.session.Close()

	if token := c.Query("token"); token != "" {
		if identity, err := h.Auth.Verify(token); err == nil {
			s.session.SignedIn(*identity)
		}
	}

	go s.writeLoop(ctx)

	filter := listing.SeededFilterOptions(c.Query("q"))
	scope := listing.AllListings()
	if c.Query("scope") == "mine" {
		actor := s.session.Actor()
		if actor == nil {
			send(ctx, conn, Event{Type: "error", Error: marketplace.ErrUnauthenticated.Error()})
		} else {
			scope = listing.OwnedBy(actor.ID)
			s.mu.Lock()
			s.wantMine = true
			s.mu.Unlock()
		}
	}
	s.start(ctx, scope, filter)
	defer s.stop()

	// a token from the query string is already reflected in the first view
	select {
	case <-s.session.Changes():
	default:
	}
	go s.watchSession(ctx)

	for {
		var msg clientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && !errors.Is(err, context.Canceled) {
				log.Printf("WS: listings connection closed: %v", err)
			}
			return
		}
		if err := s.handle(ctx, h.Auth, msg); err != nil {
			send(ctx, conn, Event{Type: "error", Error: err.Error()})
		}
	}
}

// listingSession is one connection's state: the actor, and the view model
// for the current scope. Switching scope closes the old view model before
// the new one starts, so a stale subscription never writes to the client.
type listingSession struct {
	conn    *websocket.Conn
	feed    listing.Feed
	session *auth.Session
	views   chan listing.View

	mu       sync.Mutex
	vm       *listing.ViewModel
	cancel   context.CancelFunc
	wantMine bool
}

func (s *listingSession) start(ctx context.Context, scope listing.Scope, filter listing.FilterOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	runCtx, cancel := context.WithCancel(ctx)
	vm := listing.NewViewModel(scope, filter)
	s.vm = vm
	s.cancel = cancel

	go func() {
		if err := vm.Run(runCtx, s.feed); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("WS: %v", err)
		}
	}()
	go s.forward(runCtx, vm)
	s.offer(vm.View())
}

func (s *listingSession) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *listingSession) stopLocked() {
	if s.vm != nil {
		s.vm.Close()
		s.cancel()
		s.vm = nil
	}
}

func (s *listingSession) forward(ctx context.Context, vm *listing.ViewModel) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-vm.Done():
			return
		case v := <-vm.Updates():
			s.mu.Lock()
			if s.vm == vm {
				s.offer(v)
			}
			s.mu.Unlock()
		}
	}
}

// offer replaces any unsent view; must hold s.mu
func (s *listingSession) offer(v listing.View) {
	select {
	case s.views <- v:
	default:
		select {
		case <-s.views:
		default:
		}
		s.views <- v
	}
}

func (s *listingSession) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case v := <-s.views:
			if err := send(ctx, s.conn, Event{Type: "view", Data: v}); err != nil {
				return
			}
		}
	}
}

// watchSession follows sign-in and sign-out. A "mine" view follows the
// actor; signing out drops back to all listings.
func (s *listingSession) watchSession(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.session.Changes():
			s.mu.Lock()
			want := s.wantMine
			var filter listing.FilterOptions
			if s.vm != nil {
				filter = s.vm.Filter()
			} else {
				filter = listing.DefaultFilterOptions()
			}
			s.mu.Unlock()

			if !want {
				continue
			}
			if ev.Actor == nil {
				s.mu.Lock()
				s.wantMine = false
				s.mu.Unlock()
				s.start(ctx, listing.AllListings(), filter)
				continue
			}
			s.start(ctx, listing.OwnedBy(ev.Actor.ID), filter)
		}
	}
}

func (s *listingSession) current() *listing.ViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vm
}

func (s *listingSession) handle(ctx context.Context, authSvc *auth.Service, msg clientMessage) error {
	switch msg.Type {
	case "filter":
		if len(msg.Filter) == 0 {
			return errors.New("filter is required")
		}
		vm := s.current()
		if vm == nil {
			return nil
		}
		// fields the client leaves out keep their current value
		next := vm.Filter()
		if err := json.Unmarshal(msg.Filter, &next); err != nil {
			return errors.New("invalid filter")
		}
		vm.SetFilter(next.Normalize())
	case "reset":
		if vm := s.current(); vm != nil {
			vm.ResetFilter()
		}
	case "scope":
		filter := listing.DefaultFilterOptions()
		if vm := s.current(); vm != nil {
			filter = vm.Filter()
		}
		switch msg.Scope {
		case "all", "":
			s.mu.Lock()
			s.wantMine = false
			s.mu.Unlock()
			s.start(ctx, listing.AllListings(), filter)
		case "mine":
			actor := s.session.Actor()
			if actor == nil {
				return marketplace.ErrUnauthenticated
			}
			s.mu.Lock()
			s.wantMine = true
			s.mu.Unlock()
			s.start(ctx, listing.OwnedBy(actor.ID), filter)
		default:
			return errors.New("unknown scope " + msg.Scope)
		}
	case "auth":
		identity, err := authSvc.Verify(msg.Token)
		if err != nil {
			return err
		}
		s.session.SignedIn(*identity)
	case "signout":
		s.session.SignedOut()
	default:
		return errors.New("unknown message type " + msg.Type)
	}
	return nil
}

// Admin streams the admin console. The caller must hold an admin token;
// the console then stays closed until {"type":"unlock","pin":...}.
func (h *WSHandler) Admin(c *gin.Context) {
	actor := h.actorFromQuery(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
		return
	}
	if actor.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	conn, err := h.accept(c)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	con := console.New(gate.NewPINGate(h.AdminPIN), h.Listings, h.Inquiries, h.Settings)
	defer con.Close()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-con.Changes():
				p, err := con.Panels()
				if err != nil {
					continue
				}
				if err := send(ctx, conn, Event{Type: "panels", Data: p}); err != nil {
					return
				}
			}
		}
	}()

	send(ctx, conn, Event{Type: "locked"})
	for {
		var msg clientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return
		}

		switch msg.Type {
		case "unlock":
			if err := con.Unlock(ctx, msg.PIN); err != nil {
				send(ctx, conn, Event{Type: "error", Error: err.Error()})
				continue
			}
			if p, err := con.Panels(); err == nil {
				send(ctx, conn, Event{Type: "panels", Data: p})
			}
		case "lock":
			con.Lock()
			send(ctx, conn, Event{Type: "locked"})
		default:
			send(ctx, conn, Event{Type: "error", Error: "unknown message type " + msg.Type})
		}
	}
}

func (h *WSHandler) actorFromQuery(c *gin.Context) *models.User {
	token := c.Query("token")
	if token == "" {
		token = auth.BearerToken(c)
	}
	if token == "" {
		return nil
	}
	identity, err := h.Auth.Verify(token)
	if err != nil {
		return nil
	}
	return auth.ActorFor(h.Policy, *identity)
}
