// Package ports defines the interfaces the application core depends
// on. Adapters under pkg/adapters provide the implementations (redis,
// prometheus, anthropic, in-memory fakes for tests).
package ports
