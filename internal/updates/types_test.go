package updates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := ParseMode("yaml")
	assert.ErrorContains(t, err, "unknown response mode")
}

func TestBatch_Filenames(t *testing.T) {
	b := &Batch{Updates: []FileUpdate{{Filename: "a.html"}, {Filename: "b/c.html"}}}
	assert.Equal(t, []string{"a.html", "b/c.html"}, b.Filenames())
}
