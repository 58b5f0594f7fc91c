package core_test

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"corp/sysreport/core"

	"github.com/stretchr/testify/assert"
)

func TestProgressReporter_StartStopLoop(t *testing.T) {
	t.Parallel()

	for i := 0; i < 200; i++ {
		p := core.NewProgressReporter(io.Discard)
		p.SetTotal(2)
		p.Start()
		p.Increment("os", "ok")
		p.Increment("hotfixes", "error")
		assert.NotPanics(t, p.Stop)
	}
}

func TestProgressReporter_TicksThenStops(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := core.NewProgressReporter(&out)
	p.SetTotal(1)
	p.Start()
	p.Increment("os", "ok")
	time.Sleep(650 * time.Millisecond)
	p.Stop()
	p.Stop()

	// goroutine sudah keluar setelah Stop, buffer aman dibaca
	s := out.String()
	assert.Contains(t, s, "[1/1] (100%)")
	assert.Equal(t, 1, strings.Count(s, "Collection completed: 1 sections"))
	assert.True(t, strings.HasSuffix(s, "\n"))
}

func TestProgressReporter_StopWithoutStart(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := core.NewProgressReporter(&out)
	assert.NotPanics(t, p.Stop)
	assert.Empty(t, out.String())
}
