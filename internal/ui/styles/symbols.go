package styles

// Symbols used in status cells.
const (
	SymbolClean      = "✓"
	SymbolStaged     = "●"
	SymbolModified   = "✗"
	SymbolUntracked  = "?"
	SymbolAhead      = "↑"
	SymbolBehind     = "↓"
	SymbolInSync     = "≡"
	SymbolNoUpstream = "?"
	SymbolSeparator  = "·"
)
