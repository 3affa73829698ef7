package lexer

// Features is the language-feature set handed to the lexer and parser.
type Features uint32

const (
	// FeatureInterpolatedStrings enables $"..." literals.
	FeatureInterpolatedStrings Features = 1 << iota
)

// DefaultFeatures is the feature set used when the caller has no opinion.
const DefaultFeatures = FeatureInterpolatedStrings

// Has reports whether every feature in mask is enabled.
func (f Features) Has(mask Features) bool {
	return f&mask == mask
}
