package core

import "pantrycore/pkg/domain"

// NewRulesEngine constructs an empty engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewStatusTransitionRule())
	engine.Register(NewAppendOnlyHistoryRule())
	return engine
}

// payloadAs extracts a typed entity from a change payload, accepting either a
// value or a pointer.
func payloadAs[T any](payload any) (T, bool) {
	switch v := payload.(type) {
	case T:
		return v, true
	case *T:
		if v != nil {
			return *v, true
		}
	}
	var zero T
	return zero, false
}
