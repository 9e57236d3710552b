package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/garyjia/faction-bank/internal/application/port"
)

// ApproverNotifier fans a notice out to every member of the approver roles.
// Delivery is best-effort: each target runs detached and failures are only logged.
type ApproverNotifier struct {
	platform port.ChatPlatform
	limiter  *rate.Limiter
	timeout  time.Duration
	logger   Logger
	wg       sync.WaitGroup
}

// NewApproverNotifier creates a notifier sending at most ratePerSecond messages per second
func NewApproverNotifier(platform port.ChatPlatform, ratePerSecond float64, logger Logger) *ApproverNotifier {
	if ratePerSecond <= 0 {
		ratePerSecond = 5
	}
	return &ApproverNotifier{
		platform: platform,
		limiter:  rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		timeout:  2 * time.Minute,
		logger:   logger,
	}
}

// Notify returns immediately; the fan-out continues in the background
func (n *ApproverNotifier) Notify(guildID string, roleIDs []string, text string) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer n.recoverPanic("fan-out")

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		for _, userID := range n.recipients(ctx, guildID, roleIDs) {
			if err := n.limiter.Wait(ctx); err != nil {
				n.logger.Warn("Approver fan-out stopped", "guild_id", guildID, "error", err)
				return
			}
			n.wg.Add(1)
			go n.send(ctx, userID, text)
		}
	}()
}

// Wait blocks until every detached send has finished
func (n *ApproverNotifier) Wait() {
	n.wg.Wait()
}

func (n *ApproverNotifier) recipients(ctx context.Context, guildID string, roleIDs []string) []string {
	self := n.platform.SelfID()
	seen := make(map[string]struct{})
	var out []string

	for _, roleID := range roleIDs {
		members, err := n.platform.RoleMembers(ctx, guildID, roleID)
		if err != nil {
			n.logger.Warn("Failed to list approver role members", "guild_id", guildID, "role_id", roleID, "error", err)
			continue
		}
		for _, m := range members {
			if m.ID == self {
				continue
			}
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			out = append(out, m.ID)
		}
	}
	return out
}

func (n *ApproverNotifier) send(ctx context.Context, userID, text string) {
	defer n.wg.Done()
	defer n.recoverPanic(userID)

	if err := n.platform.SendDirect(ctx, userID, port.OutgoingMessage{Content: text}); err != nil {
		n.logger.Warn("Approver notification dropped",
			"user_id", userID,
			"error", fmt.Errorf("%w: %v", ErrDeliveryFailure, err),
		)
	}
}

func (n *ApproverNotifier) recoverPanic(target string) {
	if r := recover(); r != nil {
		n.logger.Error("Approver notification panic recovered", "target", target, "panic", r)
	}
}
