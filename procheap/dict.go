package procheap

import (
	"github.com/beamforge/procgc/term"
)

// Dictionary is a process's auxiliary keyed table of terms, treated as an
// additional root vector ("process dictionary backing array"). term.Word
// is an ordinary comparable uint64, so the index is a plain Go map keyed
// directly on the term — no hashing layer or collision handling needed.
type Dictionary struct {
	slots []term.Word // flat key,value,key,value,... backing array
	index map[term.Word]int
}

func NewDictionary() *Dictionary {
	return &Dictionary{index: make(map[term.Word]int)}
}

// Put inserts or overwrites the value bound to key.
func (d *Dictionary) Put(key, val term.Word) {
	if i, ok := d.index[key]; ok {
		d.slots[i] = key
		d.slots[i+1] = val
		return
	}
	d.index[key] = len(d.slots)
	d.slots = append(d.slots, key, val)
}

func (d *Dictionary) Get(key term.Word) (term.Word, bool) {
	i, ok := d.index[key]
	if !ok {
		return 0, false
	}
	return d.slots[i+1], true
}

func (d *Dictionary) Len() int { return len(d.slots) / 2 }

// Backing exposes the flat key/value backing array for root enumeration
// and in-place evacuation rewriting.
func (d *Dictionary) Backing() []term.Word { return d.slots }
