package orchestrators

import "sanctuary/internal/domain/failure"

// ErrStaffOnly rejects a member caller on a staff operation.
var ErrStaffOnly = failure.New(failure.ErrForbidden, "this action requires a staff role")
