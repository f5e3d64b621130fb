package qute

// ResultNode is one node of a resolved template. Processing a result tree
// delivers its text fragments to a consumer in document order.
type ResultNode interface {
	Process(consumer func(string))
}

// TextResult is a static text fragment.
type TextResult string

// Process implements ResultNode.
func (r TextResult) Process(consumer func(string)) {
	consumer(string(r))
}

// SingleResult wraps one resolved value. Nil and NotFound render as empty text.
type SingleResult struct {
	Value any
}

// Process implements ResultNode.
func (r SingleResult) Process(consumer func(string)) {
	if r.Value == nil || IsNotFound(r.Value) {
		return
	}
	consumer(stringify(r.Value))
}

// MultiResult is an ordered sequence of results.
type MultiResult []ResultNode

// Process implements ResultNode.
func (r MultiResult) Process(consumer func(string)) {
	for _, node := range r {
		if node != nil {
			node.Process(consumer)
		}
	}
}

type noopResult struct{}

func (noopResult) Process(func(string)) {}

// Noop is the empty result.
var Noop ResultNode = noopResult{}
