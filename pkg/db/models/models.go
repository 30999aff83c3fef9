package models

import "github.com/shopspring/decimal"

func init() {
	// API payloads carry money as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// All lists every model in migration-safe order.
func All() []any {
	return []any{
		&User{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
	}
}
