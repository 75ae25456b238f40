package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/blackprince001/cracked-leetcode-junkie-bot/config"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/domain"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/port"
)

type fakeGuild struct {
	id       string
	name     string
	channels []port.Channel
}

func (g *fakeGuild) ID() string               { return g.id }
func (g *fakeGuild) Name() string             { return g.name }
func (g *fakeGuild) Channels() []port.Channel { return g.channels }

type fakeChannel struct {
	id       string
	name     string
	readable bool
	messages []domain.Message
	histErr  error
}

func (c *fakeChannel) ID() string           { return c.id }
func (c *fakeChannel) Name() string         { return c.name }
func (c *fakeChannel) CanReadHistory() bool { return c.readable }

func (c *fakeChannel) History(ctx context.Context, limit int) ([]domain.Message, error) {
	if c.histErr != nil {
		return nil, c.histErr
	}
	if limit > 0 && limit < len(c.messages) {
		return c.messages[:limit], nil
	}
	return c.messages, nil
}

func chatMsg(id, guildID, content string) domain.Message {
	return domain.Message{
		ID:        id,
		ChannelID: "chan-1",
		GuildID:   guildID,
		AuthorID:  "author-1",
		Content:   content,
		Timestamp: time.Now(),
	}
}

func chanOf(name string, n int) *fakeChannel {
	msgs := make([]domain.Message, n)
	for i := 0; i < n; i++ {
		msgs[i] = chatMsg(fmt.Sprintf("%s-m%d", name, i), "g1", fmt.Sprintf("%s message %d", name, i))
	}
	return &fakeChannel{id: "id-" + name, name: name, readable: true, messages: msgs}
}

func fastIndexingConfig() config.IndexingConfig {
	return config.IndexingConfig{
		QueueSize:     100,
		BatchSize:     10,
		PullTimeoutMS: 20,
	}
}

func testChannelFilter() *ChannelFilter {
	return NewChannelFilter(config.ChannelConfig{Includes: []string{"*"}})
}
