package query

import (
	"context"
	"strings"

	"github.com/goliatone/go-promise/core"
)

type HealthReader interface {
	Health() core.Health
}

type PromiseReader interface {
	List(ctx context.Context) ([]core.TokenEntry, error)
	Get(ctx context.Context, token string) (core.Promise, error)
}

// PromiseView is the read model returned by promise queries.
type PromiseView struct {
	Token   string `json:"token" yaml:"token"`
	Kind    string `json:"kind" yaml:"kind"`
	Account string `json:"account" yaml:"account"`
}

func NewPromiseView(token string, promise core.Promise) PromiseView {
	view := PromiseView{Token: token}
	if promise != nil {
		view.Kind = string(promise.Kind())
		view.Account = promise.BoundAccount()
	}
	return view
}

type HealthQuery struct {
	reader HealthReader
}

func NewHealthQuery(reader HealthReader) *HealthQuery {
	return &HealthQuery{reader: reader}
}

func (q *HealthQuery) Query(_ context.Context, _ HealthMessage) (core.Health, error) {
	if q == nil || q.reader == nil {
		return core.Health{}, queryDependencyError("query: health reader is required")
	}
	return q.reader.Health(), nil
}

type ListPromisesQuery struct {
	reader PromiseReader
}

func NewListPromisesQuery(reader PromiseReader) *ListPromisesQuery {
	return &ListPromisesQuery{reader: reader}
}

func (q *ListPromisesQuery) Query(ctx context.Context, msg ListPromisesMessage) ([]PromiseView, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: promise reader is required")
	}
	entries, err := q.reader.List(ctx)
	if err != nil {
		return nil, err
	}
	kind := strings.TrimSpace(msg.Kind)
	out := make([]PromiseView, 0, len(entries))
	for _, entry := range entries {
		if kind != "" && (entry.Promise == nil || string(entry.Promise.Kind()) != kind) {
			continue
		}
		out = append(out, NewPromiseView(entry.Token, entry.Promise))
	}
	return out, nil
}

type GetPromiseQuery struct {
	reader PromiseReader
}

func NewGetPromiseQuery(reader PromiseReader) *GetPromiseQuery {
	return &GetPromiseQuery{reader: reader}
}

func (q *GetPromiseQuery) Query(ctx context.Context, msg GetPromiseMessage) (PromiseView, error) {
	if q == nil || q.reader == nil {
		return PromiseView{}, queryDependencyError("query: promise reader is required")
	}
	promise, err := q.reader.Get(ctx, msg.Token)
	if err != nil {
		return PromiseView{}, err
	}
	return NewPromiseView(strings.TrimSpace(msg.Token), promise), nil
}
