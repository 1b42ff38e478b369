package toio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/toiolab/toio/internal/ble"
	"github.com/toiolab/toio/internal/protocol"
)

// ConnectionState is the lifecycle state of a cube session.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
	Disconnecting
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// requestKind keys the pending-request table. The toio protocol carries no
// general sequence number, so at most one acknowledgment-expecting command
// per kind may be outstanding; a second command of the same kind queues
// behind the first rather than racing it for the response.
type requestKind int

const (
	kindMotorResult requestKind = iota
	kindConfigVersion
	numRequestKinds
)

// pendingRequest is a single-resolution slot awaiting a matching response.
// done carries the response; a bare close signals disconnection.
type pendingRequest struct {
	match func(protocol.Message) bool
	done  chan protocol.Message
}

// session owns one BLE connection and its bidirectional protocol traffic:
// ordered outbound writes, the notification dispatch loop, the pending
// request table, and event fan-out to subscribers.
type session struct {
	transport ble.Transport
	cfg       *config
	log       *logrus.Entry

	// slots serialize acknowledgment-expecting commands per request kind.
	slots [numRequestKinds]sync.Mutex

	// writeMu preserves the invocation order of outbound writes.
	writeMu sync.Mutex

	mu       sync.Mutex
	state    ConnectionState
	pending  [numRequestKinds]*pendingRequest
	subs     map[int]chan Event
	nextSub  int
	nextID   uint8
	loopDone chan struct{}

	lastPos *Position
	lastStd *StandardID
	battery int
}

func newSession(t ble.Transport, cfg *config, fields logrus.Fields) *session {
	return &session{
		transport: t,
		cfg:       cfg,
		log:       cfg.log.WithFields(fields),
		subs:      make(map[int]chan Event),
		battery:   -1,
	}
}

// Connect transitions Disconnected -> Connecting -> Connected. Calling it on
// an already connected session is a no-op. On transport failure the session
// returns to Disconnected.
func (s *session) Connect(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case Connected:
		s.mu.Unlock()
		return nil
	case Connecting, Disconnecting:
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("toio: connect while %s", st)
	}
	s.state = Connecting
	s.mu.Unlock()

	if err := s.transport.Connect(ctx); err != nil {
		s.mu.Lock()
		s.state = Disconnected
		s.mu.Unlock()
		return fmt.Errorf("toio: connect failed: %w", err)
	}

	s.mu.Lock()
	s.state = Connected
	s.loopDone = make(chan struct{})
	s.mu.Unlock()

	go s.run()
	return nil
}

// Disconnect tears the connection down and waits for the dispatch loop to
// finish. Safe to call on an already disconnected session.
func (s *session) Disconnect() error {
	s.mu.Lock()
	if s.state != Connected {
		s.mu.Unlock()
		return nil
	}
	s.state = Disconnecting
	loopDone := s.loopDone
	s.mu.Unlock()

	err := s.transport.Disconnect()
	<-loopDone
	return err
}

// State returns the current connection state.
func (s *session) State() ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// send serializes a command and writes it in invocation order. It returns
// once the transport accepts the write, not when the cube acts on it. Any
// state other than Connected rejects the write.
func (s *session) send(msg protocol.Message) error {
	s.mu.Lock()
	connected := s.state == Connected
	s.mu.Unlock()
	if !connected {
		return ErrNotConnected
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.transport.Write(msg.Characteristic(), msg.Marshal()); err != nil {
		return fmt.Errorf("toio: write failed: %w", err)
	}
	return nil
}

// sendAwait sends a command and suspends until the dispatch loop resolves a
// matching response, the response timeout elapses, ctx is cancelled, or the
// connection drops. A late response after timeout or cancellation is dropped
// by the loop with a warning.
func (s *session) sendAwait(ctx context.Context, msg protocol.Message, kind requestKind, match func(protocol.Message) bool) (protocol.Message, error) {
	// Serialize same-kind requests: the slot frees only when the previous
	// request resolved, timed out, or was cancelled.
	s.slots[kind].Lock()
	defer s.slots[kind].Unlock()

	p := &pendingRequest{match: match, done: make(chan protocol.Message, 1)}

	s.mu.Lock()
	if s.state != Connected {
		s.mu.Unlock()
		return nil, ErrNotConnected
	}
	s.pending[kind] = p
	s.mu.Unlock()

	if err := s.send(msg); err != nil {
		s.removePending(kind, p)
		return nil, err
	}

	timer := time.NewTimer(s.cfg.responseTimeout)
	defer timer.Stop()

	select {
	case res, ok := <-p.done:
		if !ok {
			return nil, ErrDisconnected
		}
		return res, nil
	case <-timer.C:
		s.removePending(kind, p)
		return nil, ErrTimeout
	case <-ctx.Done():
		s.removePending(kind, p)
		return nil, ctx.Err()
	}
}

func (s *session) removePending(kind requestKind, p *pendingRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[kind] == p {
		s.pending[kind] = nil
	}
}

// requestID hands out ids for targeted motor commands. The id only
// disambiguates the acknowledgment, so a wrapping counter is fine.
func (s *session) requestID() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID
}

// Subscribe registers an event subscriber. The returned channel carries
// events published after subscription only; it is closed on disconnect.
// cancel unregisters and closes the channel.
func (s *session) Subscribe() (events <-chan Event, cancel func()) {
	ch := make(chan Event, s.cfg.eventBuffer)

	s.mu.Lock()
	if s.state != Connected {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if ch, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}

// Battery returns the last reported battery level, or -1 if none arrived yet.
func (s *session) Battery() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battery
}

// Position returns the last position reading, if any.
func (s *session) Position() (Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastPos == nil {
		return Position{}, false
	}
	return *s.lastPos, true
}

// StandardID returns the last standard id reading, if any.
func (s *session) StandardID() (StandardID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastStd == nil {
		return StandardID{}, false
	}
	return *s.lastStd, true
}

// run is the dispatch loop: one per connected session, alive until the
// transport's notification stream ends. A frame that fails to decode is
// logged and dropped; the loop itself never stops on bad input.
func (s *session) run() {
	for n := range s.transport.Notifications() {
		msg, err := protocol.Decode(n.Char, n.Data)
		if err != nil {
			s.log.WithError(err).Warn("dropping undecodable frame")
			continue
		}
		if s.resolve(msg) {
			continue
		}
		s.publish(msg)
	}
	s.shutdown()
}

// resolve routes response frames to the pending request table. It reports
// true for every response frame: a response nobody is waiting for (late
// after a timeout, or an id mismatch) is dropped with a warning instead of
// reaching event subscribers.
func (s *session) resolve(msg protocol.Message) bool {
	kind, ok := responseKind(msg)
	if !ok {
		return false
	}

	s.mu.Lock()
	p := s.pending[kind]
	if p != nil && p.match(msg) {
		s.pending[kind] = nil
		s.mu.Unlock()
		p.done <- msg
		return true
	}
	s.mu.Unlock()

	s.log.WithField("frame", fmt.Sprintf("%T", msg)).Warn("dropping unsolicited response")
	return true
}

func responseKind(msg protocol.Message) (requestKind, bool) {
	switch msg.(type) {
	case protocol.MotorTargetResponse, protocol.MotorMultiTargetResponse:
		return kindMotorResult, true
	case protocol.ConfigVersionResponse:
		return kindConfigVersion, true
	default:
		return 0, false
	}
}

// publish updates the last-known sensor cache and fans the event out to all
// subscribers in arrival order. A full subscriber channel drops the event
// for that subscriber only. Delivery happens under s.mu: a concurrent cancel
// closes its channel under the same lock, so a send can never race the close.
func (s *session) publish(msg protocol.Message) {
	ev := eventFromMessage(msg)
	if ev == nil {
		return
	}

	lagging := 0
	s.mu.Lock()
	switch e := ev.(type) {
	case PositionEvent:
		pos := e.Position
		s.lastPos = &pos
	case StandardIDEvent:
		std := e.ID
		s.lastStd = &std
	case BatteryEvent:
		s.battery = e.Level
	}
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			lagging++
		}
	}
	s.mu.Unlock()

	if lagging > 0 {
		s.log.WithField("subscribers", lagging).Warn("subscriber lagging, dropping event")
	}
}

// shutdown runs when the notification stream ends: the session becomes
// Disconnected, outstanding requests fail with ErrDisconnected, and
// subscriber channels close.
func (s *session) shutdown() {
	s.mu.Lock()
	s.state = Disconnected
	for i := range s.pending {
		if p := s.pending[i]; p != nil {
			s.pending[i] = nil
			close(p.done)
		}
	}
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	loopDone := s.loopDone
	s.mu.Unlock()

	close(loopDone)
}
