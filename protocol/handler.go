package protocol

// Handler has one method per inbound variant. Adding a variant to Inbound
// means adding a method here, which breaks every implementation until it
// handles the new case.
type Handler[R any] interface {
	MessageStart(MessageStart) R
	MessageChunk(MessageChunk) R
	MessageComplete(MessageComplete) R
	Error(Error) R
	ConversationCreated(ConversationCreated) R
	ConversationsList(ConversationsList) R
	ConversationHistory(ConversationHistory) R
	Status(Status) R
}

// Visit routes in to exactly one method of h.
func Visit[R any](in Inbound, h Handler[R]) R {
	switch v := in.(type) {
	case MessageStart:
		return h.MessageStart(v)
	case MessageChunk:
		return h.MessageChunk(v)
	case MessageComplete:
		return h.MessageComplete(v)
	case Error:
		return h.Error(v)
	case ConversationCreated:
		return h.ConversationCreated(v)
	case ConversationsList:
		return h.ConversationsList(v)
	case ConversationHistory:
		return h.ConversationHistory(v)
	case Status:
		return h.Status(v)
	}
	// Inbound is sealed; only a nil interface reaches here.
	var zero R
	return zero
}
