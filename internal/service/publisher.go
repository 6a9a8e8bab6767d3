package service

// RowPublisher fans committed row changes out to realtime subscribers.
// The gateway implements it; tests substitute a recorder. Publishing is
// fire-and-forget: a full queue drops the event and the tables stay the
// source of truth.
type RowPublisher interface {
	PublishRow(table, eventType string, row interface{}, keyCols map[string]string)
}

// noopPublisher is used until the gateway is wired in
type noopPublisher struct{}

func (noopPublisher) PublishRow(table, eventType string, row interface{}, keyCols map[string]string) {}
