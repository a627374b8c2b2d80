package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Registry manages the services pricing objects are billed to.
type Registry interface {
	Create(ctx context.Context, req CreateRequest) (*Service, error)
	Get(ctx context.Context, id snowflake.ID) (*Service, error)
	GetBySymbol(ctx context.Context, symbol string) (*Service, error)
	List(ctx context.Context) ([]Service, error)
}

type CreateRequest struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

var (
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidSymbol = errors.New("invalid_symbol")
	ErrSymbolTaken   = errors.New("symbol_taken")
	ErrNotFound      = errors.New("not_found")
)
