package room

// Notifier receives effects produced outside a command call stack, such as
// a disconnect grace timer expiring. The engine never performs I/O itself;
// the transport layer implements this to broadcast the resulting events.
type Notifier interface {
	PlayerRemoved(dep *Departure)
}
