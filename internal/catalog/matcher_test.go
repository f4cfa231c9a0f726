package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   ItemRef
		wantOk bool
	}{
		{"bare set number gets default variant", "75100", ItemRef{KindSet, "75100-1"}, true},
		{"explicit variant is kept", "75100-2", ItemRef{KindSet, "75100-2"}, true},
		{"two digit set", "42", ItemRef{KindSet, "42-1"}, true},
		{"seven digit set", "1234567", ItemRef{KindSet, "1234567-1"}, true},
		{"eight digits is not a set", "12345678", ItemRef{}, false},
		{"single digit is not a set", "7", ItemRef{}, false},
		{"minifigure code", "col404", ItemRef{KindMinifig, "col404"}, true},
		{"minifigure code is lowercased", "SW0547", ItemRef{KindMinifig, "sw0547"}, true},
		{"set wins over minifigure", "set 4950 fig sw0547", ItemRef{KindSet, "4950-1"}, true},
		{"set number inside sentence", "how much is 10179 these days", ItemRef{KindSet, "10179-1"}, true},
		{"digits glued to letters are not a set", "abc12345x", ItemRef{}, false},
		{"payload text", "PRICE USED 75100-1", ItemRef{KindSet, "75100-1"}, true},
		{"minifigure payload text", "SUBSET sw0547", ItemRef{KindMinifig, "sw0547"}, true},
		{"plain words", "fishing store", ItemRef{}, false},
		{"empty", "", ItemRef{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Match(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatch_UnresolvedCommand(t *testing.T) {
	_, ok, err := Match("/price hotel")
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnresolvedCommand))

	var unresolved *UnresolvedCommandError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "/price hotel", unresolved.Text)
}

func TestMatch_CommandWithItem(t *testing.T) {
	got, ok, err := Match("/info 42069")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ItemRef{KindSet, "42069-1"}, got)
}

func TestHints(t *testing.T) {
	m := NewMatcher(nil, nil)

	tests := []struct {
		text string
		want Hints
	}{
		{"75100", Hints{}},
		{"75100 USED", Hints{Condition: ConditionUsed, HasCondition: true}},
		{"NEW 75100", Hints{Condition: ConditionNew, HasCondition: true}},
		{"75100 USED NEW", Hints{Condition: ConditionNew, HasCondition: true}},
		{"75100 SOLD", Hints{Mode: ModeSold, HasMode: true}},
		{"USED SOLD 75100", Hints{Condition: ConditionUsed, HasCondition: true, Mode: ModeSold, HasMode: true}},
		{"75100 used", Hints{}},
		{"75100 RENEWED", Hints{}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Hints(tt.text))
		})
	}
}

func TestHints_CustomTokenOrder(t *testing.T) {
	m := NewMatcher([]ConditionToken{
		{Word: "USED", Condition: ConditionUsed},
		{Word: "NEW", Condition: ConditionNew},
	}, nil)

	h := m.Hints("NEW or USED 75100")
	assert.True(t, h.HasCondition)
	assert.Equal(t, ConditionUsed, h.Condition)
}

func TestItemRefPath(t *testing.T) {
	assert.Equal(t, "items/SET/75100-1", ItemRef{KindSet, "75100-1"}.Path())
	assert.Equal(t, "items/MINIFIG/sw0547", ItemRef{KindMinifig, "sw0547"}.Path())
	assert.Equal(t, "S", KindSet.Letter())
	assert.Equal(t, "M", KindMinifig.Letter())
}
