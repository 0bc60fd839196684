package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLearnZeroDelayIsIdentity(t *testing.T) {
	table := NewTable()
	Learn(table, 1, []int64{2, 3}, 0, 1000)

	entry, ok := table.Resolve(1, 1, 2)
	assert.True(t, ok)
	assert.Equal(t, 1, entry.OutLabel)
}

func TestLearnShiftsLabelByCyclesToShift(t *testing.T) {
	table := NewTable()
	// delay 2.5ms, cycle 1ms -> cycles_to_shift = ceil(2.5) = 3 -> mod 3 == 0 shift.
	Learn(table, 1, []int64{2}, 2.5, 1000)

	entry, ok := table.Resolve(1, 1, 2)
	assert.True(t, ok)
	assert.Equal(t, 1, entry.OutLabel)
}

func TestLearnOneCycleShift(t *testing.T) {
	table := NewTable()
	// delay 1ms, cycle 1ms -> cycles_to_shift = 1.
	Learn(table, 1, []int64{2}, 1, 1000)

	for label := 0; label < 3; label++ {
		entry, ok := table.Resolve(1, label, 2)
		assert.True(t, ok)
		assert.Equal(t, (label+1)%3, entry.OutLabel)
	}
}

func TestLearnSkipsInPortAsOutPort(t *testing.T) {
	table := NewTable()
	Learn(table, 1, []int64{1, 2}, 1, 1000)

	_, ok := table.Resolve(1, 0, 1)
	assert.False(t, ok)
	_, ok = table.Resolve(1, 0, 2)
	assert.True(t, ok)
}

func TestResolvePrefersMatchingOutPort(t *testing.T) {
	table := NewTable()
	table.Add(1, 0, 2, 1)
	table.Add(1, 0, 3, 2)

	entry, ok := table.Resolve(1, 0, 3)
	assert.True(t, ok)
	assert.Equal(t, int64(3), entry.OutPort)
	assert.Equal(t, 2, entry.OutLabel)
}

func TestResolveFallsBackToFirstEntry(t *testing.T) {
	table := NewTable()
	table.Add(1, 0, 2, 1)
	table.Add(1, 0, 3, 2)

	entry, ok := table.Resolve(1, 0, 99)
	assert.True(t, ok)
	assert.Equal(t, int64(2), entry.OutPort)
}

func TestResolveUnknownReturnsFalse(t *testing.T) {
	table := NewTable()
	_, ok := table.Resolve(1, 0, 2)
	assert.False(t, ok)
}

func TestAddDeduplicates(t *testing.T) {
	table := NewTable()
	table.Add(1, 0, 2, 1)
	table.Add(1, 0, 2, 1)

	entries, ok := table.Lookup(1, 0)
	assert.True(t, ok)
	assert.Len(t, entries, 1)
}
