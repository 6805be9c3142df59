// README: Common money value object used across modules.
package types

// Money carries an unrounded decimal amount. Rounding to a displayable
// precision happens at the presentation layer, never before storage.
type Money struct {
	Amount   float64
	Currency string
}
