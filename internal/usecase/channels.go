package usecase

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/blackprince001/cracked-leetcode-junkie-bot/config"
)

// ChannelFilter decides which channels the bulk orchestrators walk,
// by matching channel names against include/exclude glob patterns.
type ChannelFilter struct {
	includes []string
	excludes []string
}

func NewChannelFilter(cfg config.ChannelConfig) *ChannelFilter {
	includes := cfg.Includes
	if len(includes) == 0 {
		includes = []string{"*"}
	}
	return &ChannelFilter{
		includes: includes,
		excludes: cfg.Excludes,
	}
}

func (f *ChannelFilter) Match(name string) bool {
	return f.matchAny(f.includes, name) && !f.matchAny(f.excludes, name)
}

func (f *ChannelFilter) matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, name)
		if err == nil && matched {
			return true
		}
	}
	return false
}
