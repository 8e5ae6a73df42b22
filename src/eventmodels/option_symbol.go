package eventmodels

import "unicode"

// OptionSymbol is an OCC-style option symbol, e.g. "SPY   240119C00470000",
// or the broker's display form "SPY Jan 19 '24 $470 Call".
type OptionSymbol string

// Root returns the leading run of letters, which is the underlying ticker.
// It is empty when the symbol does not start with a letter.
func (s OptionSymbol) Root() string {
	symbol := string(s)
	for i, r := range symbol {
		if !unicode.IsLetter(r) {
			return symbol[:i]
		}
	}

	return symbol
}
