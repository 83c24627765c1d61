package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTheme(t *testing.T) {
	assert.Equal(t, "default", GetTheme("default").Name)
	assert.Equal(t, "catppuccin-mocha", GetTheme("catppuccin").Name)
	assert.Equal(t, "catppuccin-mocha", GetTheme("catppuccin-mocha").Name)
	assert.Equal(t, "default", GetTheme("solarized").Name)

	for _, name := range Names {
		th := GetTheme(name)
		assert.NotEmpty(t, th.PinnedColumn, name)
		assert.NotEmpty(t, th.TableRowSelected, name)
	}
}
