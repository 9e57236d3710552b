package gateway

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// HandlerFunc handles one kind of action
type HandlerFunc func(ctx context.Context, a Action, r Replier) error

// Router is the typed handler table
type Router struct {
	handlers map[ActionKind]HandlerFunc
	logger   Logger
}

// NewRouter creates an empty Router
func NewRouter(logger Logger) *Router {
	return &Router{
		handlers: make(map[ActionKind]HandlerFunc),
		logger:   logger,
	}
}

// On registers the handler of a kind, replacing any previous one
func (rt *Router) On(kind ActionKind, h HandlerFunc) {
	rt.handlers[kind] = h
}

// Route runs the handler of a.Kind. Failures and panics are logged and
// answered with a private message; they never reach the caller.
func (rt *Router) Route(ctx context.Context, a Action, r Replier) {
	err := rt.run(ctx, a, r)
	if err == nil {
		return
	}

	if isUserError(err) {
		rt.logger.Info("Action refused",
			"action", a.Kind.String(),
			"actor_id", a.Actor.ID,
			"channel_id", a.ChannelID,
			"reason", err.Error(),
		)
	} else {
		rt.logger.Error("Action failed",
			"action", a.Kind.String(),
			"actor_id", a.Actor.ID,
			"channel_id", a.ChannelID,
			"guild_id", a.GuildID,
			"error", err,
		)
	}

	if rerr := r.Reply(ctx, Reply{Content: UserMessage(a.Kind, err), Private: true}); rerr != nil {
		rt.logger.Warn("Failed to report action failure", "action", a.Kind.String(), "error", rerr)
	}
}

func (rt *Router) run(ctx context.Context, a Action, r Replier) (err error) {
	defer func() {
		if p := recover(); p != nil {
			rt.logger.Error("Handler panicked",
				"action", a.Kind.String(),
				"panic", fmt.Sprint(p),
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()

	h, ok := rt.handlers[a.Kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownControl, a.Kind)
	}
	return h(ctx, a, r)
}
