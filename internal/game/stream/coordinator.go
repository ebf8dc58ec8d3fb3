package stream

import (
	"context"
	"strings"

	"github.com/fablestack/engine/internal/game/event"
	"github.com/fablestack/engine/internal/platform/errors"
)

// FrameType discriminates outbound frames.
type FrameType string

const (
	// FrameTypeEvent carries one committed mechanical event.
	FrameTypeEvent FrameType = "event"
	// FrameTypeToken carries filtered narration text.
	FrameTypeToken FrameType = "token"
	// FrameTypeError carries a typed error without closing the session.
	FrameTypeError FrameType = "error"
	// FrameTypeEndOfTurn marks the explicit end of a turn's stream.
	FrameTypeEndOfTurn FrameType = "end-of-turn"
)

// Frame is one element of the ordered outbound stream for a turn.
type Frame struct {
	Type  FrameType
	Event *event.Event
	Token string
	// Code and Message describe an error frame.
	Code    errors.Code
	Message string
	// Status is the error's transport class, the gRPC code name.
	Status string
	// Recoverable reports whether a corrected or retried action can
	// succeed: true for validation and state-conflict errors.
	Recoverable bool
}

// Coordinator owns the ordered outbound stream for a single turn.
// Mechanical events are emitted ahead of narration; narration tokens
// pass through a TagFilter so control tags never reach the consumer.
// The frame channel is bounded, giving the producer backpressure when
// the consumer lags.
type Coordinator struct {
	frames    chan Frame
	filter    TagFilter
	narration strings.Builder
}

// DefaultBuffer is the frame buffer used when callers pass no size.
const DefaultBuffer = 32

// NewCoordinator creates a coordinator with the given frame buffer.
func NewCoordinator(buffer int) *Coordinator {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Coordinator{frames: make(chan Frame, buffer)}
}

// Frames returns the consumer side of the stream.
func (c *Coordinator) Frames() <-chan Frame {
	return c.frames
}

// EmitEvent sends a committed mechanical event frame.
func (c *Coordinator) EmitEvent(ctx context.Context, evt event.Event) error {
	return c.send(ctx, Frame{Type: FrameTypeEvent, Event: &evt})
}

// WriteToken feeds one narration token through the tag filter, emitting
// whatever text became safe to show.
func (c *Coordinator) WriteToken(ctx context.Context, token string) error {
	text := c.filter.Write(token)
	if text == "" {
		return nil
	}
	c.narration.WriteString(text)
	return c.send(ctx, Frame{Type: FrameTypeToken, Token: text})
}

// EmitError sends a typed error frame. The turn stream stays open; the
// session remains usable for the next valid action.
func (c *Coordinator) EmitError(ctx context.Context, err error) error {
	code := errors.GetCode(err)
	return c.send(ctx, Frame{
		Type:        FrameTypeError,
		Code:        code,
		Message:     err.Error(),
		Status:      code.GRPCCode().String(),
		Recoverable: code.IsValidation() || code.IsStateConflict(),
	})
}

// FlushNarration forces out any text still held back by the tag filter,
// as at the end of the narration stream.
func (c *Coordinator) FlushNarration(ctx context.Context) error {
	text := c.filter.Flush()
	if text == "" {
		return nil
	}
	c.narration.WriteString(text)
	return c.send(ctx, Frame{Type: FrameTypeToken, Token: text})
}

// Close flushes any residual narration, sends the end-of-turn marker and
// closes the frame channel.
func (c *Coordinator) Close(ctx context.Context) error {
	if err := c.FlushNarration(ctx); err != nil {
		close(c.frames)
		return err
	}
	err := c.send(ctx, Frame{Type: FrameTypeEndOfTurn})
	close(c.frames)
	return err
}

// Narration returns the filtered narration text emitted so far.
func (c *Coordinator) Narration() string {
	return c.narration.String()
}

// Speaker returns the narration's most recent speaker attribution.
func (c *Coordinator) Speaker() string {
	return c.filter.Speaker()
}

func (c *Coordinator) send(ctx context.Context, frame Frame) error {
	select {
	case c.frames <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
