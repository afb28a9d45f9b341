package workflow

import (
	"errors"
	"sync"
	"time"
)

// DefaultConfirmTimeout is how long an operator has to answer a prompt.
const DefaultConfirmTimeout = 180 * time.Second

var (
	ErrNotRespondent = errors.New("only the requester can answer this prompt")
	ErrGateResolved  = errors.New("prompt already resolved")
)

type ConfirmationResult uint8

const (
	Confirmed ConfirmationResult = iota + 1
	Declined
	TimedOut
)

func (r ConfirmationResult) String() string {
	switch r {
	case Confirmed:
		return "confirmed"
	case Declined:
		return "declined"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

type ConfirmationRequest struct {
	Prompt     string
	Respondent Actor
	Timeout    time.Duration
}

// Gate is a single-use yes/no wait. The first of Respond or the timeout
// decides the result; everything after that is ignored.
type Gate struct {
	req    ConfirmationRequest
	once   sync.Once
	done   chan struct{}
	result ConfirmationResult

	startOnce sync.Once
	timer     *time.Timer
}

func NewGate(req ConfirmationRequest) *Gate {
	if req.Timeout <= 0 {
		req.Timeout = DefaultConfirmTimeout
	}
	return &Gate{
		req:  req,
		done: make(chan struct{}),
	}
}

func (g *Gate) Request() ConfirmationRequest {
	return g.req
}

// Respond records the respondent's answer.
func (g *Gate) Respond(userID string, confirmed bool) error {
	if userID != g.req.Respondent.ID {
		return ErrNotRespondent
	}

	result := Declined
	if confirmed {
		result = Confirmed
	}
	if !g.resolve(result) {
		return ErrGateResolved
	}
	return nil
}

// Wait blocks until the gate resolves. The timeout clock starts on the
// first call to Wait.
func (g *Gate) Wait() ConfirmationResult {
	g.startOnce.Do(func() {
		g.timer = time.AfterFunc(g.req.Timeout, func() {
			g.resolve(TimedOut)
		})
	})

	<-g.done
	g.timer.Stop()
	return g.result
}

// Done is closed once the gate has a result.
func (g *Gate) Done() <-chan struct{} {
	return g.done
}

func (g *Gate) resolve(result ConfirmationResult) bool {
	won := false
	g.once.Do(func() {
		g.result = result
		close(g.done)
		won = true
	})
	return won
}
