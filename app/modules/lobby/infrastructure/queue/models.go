package lobbyqueue

// LobbyExpiryJob closes a lobby whose TTL has elapsed.
// On execution it publishes a lobby.expire.due event; the lobby handlers
// pick that up and run the actual expiry.
type LobbyExpiryJob struct {
	LobbyID string `json:"lobby_id"`
}

// Kind returns the job type identifier for River.
func (LobbyExpiryJob) Kind() string { return "lobby_expiry" }
