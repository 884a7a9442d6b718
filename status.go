package postbus

import (
	"context"
	"fmt"
)

type Status struct {
	NumEvents        int
	NumQueues        int
	NumSubscriptions int
	NumItems         int
	NumPendingItems  int
	NumClaimedItems  int
}

// IsZero returns true if the receiver is nil
// or dereferenced equal to its zero value.
// Valid to call on a nil receiver.
func (s *Status) IsZero() bool {
	return s == nil || *s == Status{}
}

// String implements the fmt.Stringer interface.
// Valid to call on a nil receiver.
func (s *Status) String() string {
	if s == nil {
		return "nil Status"
	}
	return fmt.Sprintf("Status{NumEvents: %d, NumQueues: %d, NumSubscriptions: %d, NumItems: %d, NumPendingItems: %d, NumClaimedItems: %d}",
		s.NumEvents, s.NumQueues, s.NumSubscriptions, s.NumItems, s.NumPendingItems, s.NumClaimedItems)
}

func GetStatus(ctx context.Context) (status *Status, err error) {
	return storeFrom(ctx).GetStatus(ctx)
}
