package eventstream

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	stream := makeStream(t, []rawEvent{
		{user: "u1", name: "catalog", ts: t0},
		{user: "u1", name: "cart", ts: t0.Add(10 * time.Minute)},
		{user: "u2", name: "catalog", ts: t0.Add(time.Minute)},
	})
	d := Describe(stream)

	assert.Equal(t, 3, d.Events)
	assert.Equal(t, 2, d.Users)
	assert.Equal(t, t0, d.Start)
	assert.Equal(t, t0.Add(10*time.Minute), d.End)
	assert.Equal(t, 3, d.TypeFreqs[EventTypeRaw])
	assert.Equal(t, 2, d.NameFreqs["catalog"])
	assert.Equal(t, 1, d.Paths.MinSteps)
	assert.Equal(t, 2, d.Paths.MaxSteps)
	assert.InDelta(t, 1.5, d.Paths.MeanSteps, 1e-9)
	assert.Equal(t, time.Duration(0), d.Paths.MinSpan)
	assert.Equal(t, 10*time.Minute, d.Paths.MaxSpan)

	text := d.ReportText()
	assert.True(t, strings.Contains(text, "events=3 users=2"))
	assert.True(t, strings.Contains(text, `"catalog": 2`))

	b, err := d.ReportJSON()
	assert.NoError(t, err)
	assert.True(t, strings.Contains(string(b), `"users": 2`))
}

func TestDescribeEmptyStream(t *testing.T) {
	stream := makeStream(t, []rawEvent{{user: "u1", name: "a", ts: t0}})
	f := stream.ToFrame(FrameOptions{})
	id, _ := f.StringAt(0, stream.Schema().EventID)
	stream.SoftDelete([]string{id})

	d := Describe(stream)
	assert.Equal(t, 0, d.Events)
	assert.Equal(t, 0, d.Users)
	assert.NotPanics(t, func() { _ = d.ReportText() })
}
