package spark

import (
	"log/slog"
	"strings"
)

// Aggregator folds streamed chunks back into a single completion. Feed
// chunks in arrival order with Add, then read the combined result once
// with Result. The zero value is ready to use.
type Aggregator struct {
	seen         bool
	id           string
	object       string
	created      int64
	sid          string
	role         string
	content      strings.Builder
	finishReason string
	isEnd        bool
	usage        *Usage
}

// Add folds one chunk into the aggregate. Identity fields come from the
// first chunk; a later chunk that disagrees is logged and its identity
// ignored, because content order is what callers depend on.
func (a *Aggregator) Add(cc *ChatCompletion) {
	if cc == nil {
		return
	}
	if !a.seen {
		a.seen = true
		a.id = cc.ID
		a.object = cc.Object
		a.created = cc.Created
		a.sid = cc.Sid
	} else if cc.ID != "" && cc.ID != a.id {
		slog.Warn("stream chunk id drifted mid-stream, keeping first",
			"first", a.id, "got", cc.ID)
	}

	if a.role == "" {
		a.role = cc.Role()
	}
	a.content.WriteString(cc.Content())
	if fr := finishReasonOf(cc); fr != "" {
		a.finishReason = fr
	}
	if cc.IsEnd {
		a.isEnd = true
	}
	if cc.Usage != nil {
		a.usage = cc.Usage
	}
}

// Result materialises the aggregate. An empty sequence yields a
// completion with no choices rather than an error, matching how the
// provider answers an immediately-terminated stream.
func (a *Aggregator) Result() *ChatCompletion {
	if !a.seen {
		return &ChatCompletion{}
	}
	role := a.role
	if role == "" {
		role = "assistant"
	}
	return &ChatCompletion{
		ID:      a.id,
		Object:  a.object,
		Created: a.created,
		Sid:     a.sid,
		Choices: []Choice{{
			Index:        0,
			Message:      &ChatCompletionMessage{Role: role, Content: a.content.String()},
			FinishReason: a.finishReason,
		}},
		FinishReason: a.finishReason,
		IsEnd:        a.isEnd,
		Usage:        a.usage,
	}
}

// Aggregate combines an already-collected chunk slice.
func Aggregate(chunks []*ChatCompletion) *ChatCompletion {
	var agg Aggregator
	for _, cc := range chunks {
		agg.Add(cc)
	}
	return agg.Result()
}

// AggregateEvents drains a stream channel into a single completion. It
// stops at the first failed event and returns that error alongside
// whatever had been accumulated.
func AggregateEvents(events <-chan StreamEvent) (*ChatCompletion, error) {
	var agg Aggregator
	for ev := range events {
		if ev.Err != nil {
			return agg.Result(), ev.Err
		}
		agg.Add(ev.Completion)
	}
	return agg.Result(), nil
}

// finishReasonOf prefers the per-choice finish reason and falls back to
// the top-level field older protocol versions use.
func finishReasonOf(cc *ChatCompletion) string {
	if len(cc.Choices) > 0 && cc.Choices[0].FinishReason != "" {
		return cc.Choices[0].FinishReason
	}
	return cc.FinishReason
}
