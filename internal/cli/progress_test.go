package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressSpinnerWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressSpinner("Exporting statistics", true)
	p.out = &buf

	p.Start()
	p.Stop()

	assert.False(t, p.enabled)
	assert.Equal(t, "Exporting statistics...\n", buf.String())
}

func TestSpinnerProgramQuitsOnComplete(t *testing.T) {
	p := NewProgressSpinner("Loading", false)
	prog := &spinnerProgram{spinner: p.spinner, message: "Loading", complete: p.complete, style: p.style}

	assert.Contains(t, prog.View(), "Loading")

	model, cmd := prog.Update(completeMsg{})
	assert.NotNil(t, cmd)
	assert.Empty(t, model.View())
}
