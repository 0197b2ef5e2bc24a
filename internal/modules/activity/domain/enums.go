//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Kind is the outcome recorded for a relay operation.
// ENUM(created,updated,deleted,failed)
type Kind string
