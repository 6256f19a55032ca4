package ipc

// Bus owns one Service per named channel in spec §4.6's table, with
// buffer tiers matching the "large/medium/small" column there.
type Bus struct {
	Events        *Service
	WindowDetails *Service
	FocusEvents   *Service
	Layout        *Service
	Animation     *Service
	Commands      *Service
	Responses     *Service
	Heartbeat     *Service
}

// NewBus constructs the fixed service set with the spec's relative buffer
// sizing: large history for late-joining dashboards on the broadcast
// services, medium for command/response/layout traffic, small (no
// replay) for heartbeat.
func NewBus() *Bus {
	return &Bus{
		Events:        NewService(ServiceGridEvents, 1024),
		WindowDetails: NewService(ServiceGridWindowDetails, 1024),
		FocusEvents:   NewService(ServiceGridFocusEvents, 1024),
		Layout:        NewService(ServiceGridLayout, 256),
		Animation:     NewService(ServiceGridAnimation, 256),
		Commands:      NewService(ServiceGridCommands, 256),
		Responses:     NewService(ServiceGridResponses, 256),
		Heartbeat:     NewService(ServiceGridHeartbeat, 0),
	}
}

// All returns every service, for startup discovery and bulk operations.
func (b *Bus) All() []*Service {
	return []*Service{b.Events, b.WindowDetails, b.FocusEvents, b.Layout, b.Animation, b.Commands, b.Responses, b.Heartbeat}
}
