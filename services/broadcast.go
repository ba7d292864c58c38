package services

// StandingsBroadcaster pushes live updates to subscribers of a competition
// room. Implemented by live.Hub; a nil broadcaster disables pushes.
type StandingsBroadcaster interface {
	BroadcastToRoom(room string, messageType string, payload interface{})
}
