package serial

// FakeReader is a test double that returns scripted input one byte per
// call, with optional idle polls in between.
type FakeReader struct {
	// Input holds the scripted bytes.
	Input []byte

	// IdleEvery, if > 0, makes every IdleEvery-th poll report no input.
	IdleEvery int

	index int
	polls int
}

// NewFakeReader creates a FakeReader over input.
func NewFakeReader(input string) *FakeReader {
	return &FakeReader{Input: []byte(input)}
}

// TryReadByte returns the next scripted byte.
func (f *FakeReader) TryReadByte() (byte, bool) {
	f.polls++
	if f.IdleEvery > 0 && f.polls%f.IdleEvery == 0 {
		return 0, false
	}
	if f.index >= len(f.Input) {
		return 0, false
	}
	b := f.Input[f.index]
	f.index++
	return b, true
}

// Remaining returns how many scripted bytes are left.
func (f *FakeReader) Remaining() int {
	return len(f.Input) - f.index
}

// Polls returns how many times TryReadByte was called.
func (f *FakeReader) Polls() int {
	return f.polls
}
