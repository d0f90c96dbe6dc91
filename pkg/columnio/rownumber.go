package columnio

// RowNumber is the sequence of ordinals identifying a triple in a tree of
// nested instances: the record ordinal first, then one ordinal per
// definition level. -1 marks a level that is undefined at this triple.
// Given the following record the row numbers of its leaves would be:
//
//	A          0, -1, -1
//	  B        0,  0, -1
//	  C        0,  1, -1
//	    D      0,  1,  0
//	  E        0,  2, -1
type RowNumber []int64

// NewRowNumber returns an empty row number for a leaf with the given maximum
// definition level, positioned before the first record.
func NewRowNumber(maxDefinitionLevel int) RowNumber {
	rn := make(RowNumber, maxDefinitionLevel+1)
	for i := range rn {
		rn[i] = -1
	}
	return rn
}

// Valid reports whether the row number points at a record.
func (t RowNumber) Valid() bool {
	return len(t) > 0 && t[0] >= 0
}

// Record is the ordinal of the record the current triple belongs to.
func (t RowNumber) Record() int64 {
	return t[0]
}

// Next increments and resets the ordinals according to the levels of the
// next triple. Examples from the Dremel paper, Name.Language.Country:
//
//	value  | r | d | expected RowNumber
//	-------|---|---|-------------------
//	       |   |   | { -1, -1, -1, -1 }  <-- starting position
//	us     | 0 | 3 | {  0,  0,  0,  0 }
//	null   | 2 | 2 | {  0,  0,  1, -1 }
//	null   | 1 | 1 | {  0,  1, -1, -1 }
//	gb     | 1 | 3 | {  0,  2,  0,  0 }
//	null   | 0 | 1 | {  1,  0, -1, -1 }
//
// The levels must already have been checked against the leaf's maxima.
func (t RowNumber) Next(repetitionLevel, definitionLevel int) {
	// Next instance at this level
	t[repetitionLevel]++

	// New children up through the definition level
	for i := repetitionLevel + 1; i <= definitionLevel; i++ {
		t[i] = 0
	}

	// Children past the definition level are undefined
	for i := definitionLevel + 1; i < len(t); i++ {
		t[i] = -1
	}
}
