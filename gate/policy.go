package gate

import "context"

// Policy vetoes actions on individual records of one resource type.
type Policy[U any] interface {
	// Can reports whether user may perform action on resource. It is only
	// consulted after the user's profile granted the permission.
	Can(ctx context.Context, user U, action Action, resource any) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc[U any] func(ctx context.Context, user U, action Action, resource any) bool

func (f PolicyFunc[U]) Can(ctx context.Context, user U, action Action, resource any) bool {
	return f(ctx, user, action, resource)
}
