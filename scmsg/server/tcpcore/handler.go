package tcpcore

// EventHandler Conn events callback
type EventHandler interface {
	// OnOpened a new Conn has been accepted
	OnOpened(c Conn)
	// OnClosed c has been closed, err is the reason the handler stopped
	OnClosed(c Conn, err error)
}

func DefaultEventHandler() EventHandler {
	return &NetEventHandler{}
}

// NetEventHandler is a built-in implementation for EventHandler
type NetEventHandler struct {
}

func (h *NetEventHandler) OnOpened(c Conn) {
}

func (h *NetEventHandler) OnClosed(c Conn, err error) {
}
