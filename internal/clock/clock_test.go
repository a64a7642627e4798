package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixed(t *testing.T) {
	c := At(2024, time.March, 15)

	assert.Equal(t, 2024, c.Now().Year())
	assert.Equal(t, time.March, c.Now().Month())
	assert.Equal(t, 15, c.Now().Day())
	assert.Equal(t, c.Now(), c.Now())
}

func TestSystemClock(t *testing.T) {
	before := time.Now()
	got := SystemClock{}.Now()

	assert.False(t, got.Before(before))
}
