package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-promise/core"
)

var (
	_ gocmd.Querier[HealthMessage, core.Health]         = (*HealthQuery)(nil)
	_ gocmd.Querier[ListPromisesMessage, []PromiseView] = (*ListPromisesQuery)(nil)
	_ gocmd.Querier[GetPromiseMessage, PromiseView]     = (*GetPromiseQuery)(nil)
)
