package output

// Output delivers one payload to a logical topic. Publish requests
// at-least-once delivery and may block while the underlying transport
// recovers; callers tolerate the stall.
type Output interface {
	Publish(topic string, payload []byte) error
	Close() error
}

// Connectivity is the narrow view of the transport link consumed by the
// watchdog task.
type Connectivity interface {
	IsConnected() bool
	Connect() error
	Disconnect()
}

// AlwaysConnected is the connectivity provider for outputs that have no
// link to lose, such as the console.
type AlwaysConnected struct{}

func (AlwaysConnected) IsConnected() bool { return true }
func (AlwaysConnected) Connect() error    { return nil }
func (AlwaysConnected) Disconnect()       {}
