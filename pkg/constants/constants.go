package constants

import (
	"github.com/go-playground/validator/v10"
)

type contextKey string

const (
	PoolKey      contextKey = "pool"
	TxKey        contextKey = "tx"
	LoggerKey    contextKey = "logger"
	ActorKey     contextKey = "actor"
	RequestStart contextKey = "requestStart"
)

// Validate is the shared validator instance used by all DTOs.
var Validate = validator.New(validator.WithRequiredStructEnabled())
