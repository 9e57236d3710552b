package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/garyjia/faction-bank/internal/application/port"
)

// CategoryResolver finds the tickets category of a guild by configured id,
// then by name, and creates it by name as a last resort. Two concurrent
// first calls may both create; the later lookups settle on whichever is cached.
type CategoryResolver struct {
	platform port.ChatPlatform
	id       string
	name     string

	mu     sync.Mutex
	cached map[string]string // guild id -> category id
}

// NewCategoryResolver creates a resolver shared by every guild the bot serves.
// A configured category id only applies to the guild that owns it.
func NewCategoryResolver(platform port.ChatPlatform, categoryID, categoryName string) *CategoryResolver {
	return &CategoryResolver{
		platform: platform,
		id:       categoryID,
		name:     categoryName,
		cached:   make(map[string]string),
	}
}

// Resolve returns the category id of the guild, creating the category when
// it does not exist. A failed lookup is returned as is and creates nothing.
func (c *CategoryResolver) Resolve(ctx context.Context, guildID string) (string, error) {
	id, err := c.Lookup(ctx, guildID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	if c.name == "" {
		return "", fmt.Errorf("%w: no category name configured", ErrCategoryUnresolvable)
	}

	created, err := c.platform.CreateCategory(ctx, guildID, c.name)
	if err != nil {
		return "", fmt.Errorf("%w: create %q: %v", ErrCategoryUnresolvable, c.name, err)
	}
	return c.store(guildID, created.ID), nil
}

// Lookup returns the category id without creating anything.
// An empty id with a nil error means the category does not exist.
func (c *CategoryResolver) Lookup(ctx context.Context, guildID string) (string, error) {
	if guildID == "" {
		return "", fmt.Errorf("%w: no guild", ErrCategoryUnresolvable)
	}

	c.mu.Lock()
	cached := c.cached[guildID]
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	if c.id != "" {
		ch, err := c.platform.Channel(ctx, c.id)
		if err == nil && ch != nil && ch.Kind == port.ChannelKindCategory && ch.GuildID == guildID {
			return c.store(guildID, ch.ID), nil
		}
	}

	channels, err := c.platform.GuildChannels(ctx, guildID)
	if err != nil {
		return "", fmt.Errorf("%w: list channels: %v", ErrCategoryUnresolvable, err)
	}
	for _, ch := range channels {
		if ch.Kind == port.ChannelKindCategory && c.name != "" && strings.EqualFold(ch.Name, c.name) {
			return c.store(guildID, ch.ID), nil
		}
	}
	return "", nil
}

// store caches id unless another call got there first and returns the winner
func (c *CategoryResolver) store(guildID, id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing := c.cached[guildID]; existing != "" {
		return existing
	}
	c.cached[guildID] = id
	return id
}

// Forget drops the cached id of a guild, e.g. after the category was deleted by hand
func (c *CategoryResolver) Forget(guildID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cached, guildID)
}
