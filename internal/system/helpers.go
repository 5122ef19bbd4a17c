package system

import (
	"errors"
	"fmt"

	"github.com/l1jgo/ecsworld/internal/component"
	"github.com/l1jgo/ecsworld/internal/core/ecs"
)

func isRegistered(err error) bool {
	return errors.Is(err, ecs.ErrComponentRegistered)
}

// nameOf returns the unit's display name, or a numbered placeholder.
func nameOf(names *ecs.ReadGuard[component.Name], id ecs.EntityID) string {
	if n, ok := names.Get(id); ok {
		return string(n)
	}
	return fmt.Sprintf("entity-%d", id)
}
