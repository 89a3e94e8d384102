package events

import "context"

type MultiEmitter struct {
	emitters []Emitter
}

func NewMultiEmitter(emitters ...Emitter) *MultiEmitter {
	return &MultiEmitter{emitters: emitters}
}

func (m *MultiEmitter) Emit(ctx context.Context, event ModerationEvent) {
	for _, e := range m.emitters {
		e.Emit(ctx, event)
	}
}
