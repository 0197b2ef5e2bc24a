//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package config

// Backend selects where delivery records are kept.
// ENUM(memory,redis)
type Backend string
