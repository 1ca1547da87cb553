// Package core contains the promise domain: the closed set of promise kinds,
// the durable token store, the load gate and the redemption service. Storage
// and transport adapters depend on this package; core does not depend on
// them.
package core
