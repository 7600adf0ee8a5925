package services

import "errors"

// Sentinel errors surfaced by the cart and order engines. Mutation paths fail
// loudly with one of these and leave the stored state untouched; read paths
// never fail, they degrade to empty collections.
var (
	// ErrInvalidProduct: the add-to-cart payload has neither "_id" nor "id".
	ErrInvalidProduct = errors.New("product has no usable identifier")

	// ErrInvalidQuantity: quantity below 1. Callers remove the line instead
	// of writing a zero-quantity record.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrEmptyCart: checkout attempted with no cart lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrMissingField: a required checkout field is blank. Always wrapped
	// with the field name.
	ErrMissingField = errors.New("required field is blank")

	// ErrOrderNotFound: no order with the given id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidTransition: the order is shipped, delivered or cancelled
	// and can no longer be edited.
	ErrInvalidTransition = errors.New("order status can no longer be changed")

	// ErrForbidden: the actor's role does not permit the operation.
	ErrForbidden = errors.New("operation not permitted for this user")
)
