package sound

// assertions enables precondition checks that the sound hardware never had.
// Off by default so playback matches the hardware; tests turn it on.
var assertions bool

// SetAssertions toggles return-stack bounds checks and panics on paths the
// production content never reaches.
func SetAssertions(on bool) {
	assertions = on
}

// unreachable marks a path no shipped sound data exercises. Its intended
// behavior is unknown, so it panics under assertions and is otherwise a no-op.
func unreachable(what string) {
	if assertions {
		panic("sound: unreachable: " + what)
	}
}
