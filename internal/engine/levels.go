package engine

// RenderProfile controls how much the renderer inlines versus leaves
// compact, mirroring the teacher's 5-level obfuscation-strength knob but
// repurposed for the opposite direction: level 1 renders the most literal,
// fully-expanded form (every range realized, every array printed on one
// line), level 5 renders the most compact form (ranges kept as "a..b",
// arrays longer than 8 printed one element per line; nothing is summarized).
type RenderProfile struct {
	Level int

	// InlineRangeMax is the largest range size (end-start+1) the renderer
	// will expand into an element list instead of emitting "start..end".
	InlineRangeMax int

	// InlineArrayMax is the largest array length the renderer prints on
	// one line before switching to one-element-per-line formatting.
	InlineArrayMax int

	// ShowOpaqueHints is set per level but Render does not read it: opaque
	// (unsafe/unknown) fragments are emitted verbatim with no annotation.
	ShowOpaqueHints bool

	// CollapseWhitespace normalizes runs of blank lines between
	// statements down to a single blank line.
	CollapseWhitespace bool
}

// DefaultRenderProfile is level 3: realistic middle ground between fully
// expanded and maximally compact.
func DefaultRenderProfile() RenderProfile { return RenderProfileForLevel(3) }

// RenderProfileForLevel maps a 1..5 verbosity level to a concrete profile.
// Levels outside 1..5 clamp to the nearest bound.
func RenderProfileForLevel(level int) RenderProfile {
	switch {
	case level <= 1:
		return RenderProfile{Level: 1, InlineRangeMax: 1 << 30, InlineArrayMax: 1 << 30, ShowOpaqueHints: true, CollapseWhitespace: false}
	case level == 2:
		return RenderProfile{Level: 2, InlineRangeMax: 256, InlineArrayMax: 64, ShowOpaqueHints: true, CollapseWhitespace: false}
	case level == 3:
		return RenderProfile{Level: 3, InlineRangeMax: 64, InlineArrayMax: 32, ShowOpaqueHints: true, CollapseWhitespace: true}
	case level == 4:
		return RenderProfile{Level: 4, InlineRangeMax: 16, InlineArrayMax: 16, ShowOpaqueHints: false, CollapseWhitespace: true}
	default:
		return RenderProfile{Level: 5, InlineRangeMax: 0, InlineArrayMax: 8, ShowOpaqueHints: false, CollapseWhitespace: true}
	}
}
