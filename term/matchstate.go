package term

// MatchState is a view over the three words following a SubtagMatchState
// header: Orig (a boxed pointer to the binary term being matched), Offset
// (a fixed displacement into that binary's data, set once at match-state
// creation), and Base (Orig's resolved position plus Offset, cached for
// fast access by bit-matching BIFs).
//
// Base is an interior pointer: it does not point at the start of any
// object evacuation recognizes, so the evacuator must special-case
// SubtagMatchState and call Rebase after forwarding Orig, rather than
// treating Base as an ordinary root/field.
type MatchState struct {
	words []Word
	at    int // index of the header word
}

const matchStateArity = 3 // Orig, Offset, Base

func NewMatchState(words []Word, headerIndex int) MatchState {
	return MatchState{words: words, at: headerIndex}
}

func (m MatchState) Orig() Word   { return m.words[m.at+1] }
func (m MatchState) Offset() Word { return m.words[m.at+2] }
func (m MatchState) Base() Word   { return m.words[m.at+3] }

func (m MatchState) SetOrig(w Word) { m.words[m.at+1] = w }
func (m MatchState) setBase(w Word) { m.words[m.at+3] = w }

// Rebase recomputes Base from a (possibly just-forwarded) Orig pointer.
// Call this after Orig has been updated to its post-evacuation location.
func (m MatchState) Rebase() {
	newOrig := m.Orig()
	base := Word(PointerIndex(newOrig)) + m.Offset()
	m.setBase(base)
}
