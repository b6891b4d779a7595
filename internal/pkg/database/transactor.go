package database

import "context"

// Transactor runs fn so that every repository call made with the ctx it
// receives shares one unit of work.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
