package cache

import (
	"context"
	"strings"
)

// Cooldown gates repeated actions: Allow returns true at most once per window for a key
type Cooldown interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// CooldownKey joins key parts with ':'
func CooldownKey(parts ...string) string {
	return strings.Join(parts, ":")
}
