package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetryOff(t *testing.T) {
	tree := ParseString("1 + 2", WithLogger(quietLogger))
	assert.Nil(t, tree.Telemetry)
	assert.Nil(t, tree.DebugEvents)
}

func TestTelemetryBasic(t *testing.T) {
	tree := ParseString("1 + 2", WithLogger(quietLogger), WithTelemetryBasic())
	require.NotNil(t, tree.Telemetry)

	assert.Equal(t, 4, tree.Telemetry.TokenCount)
	assert.Equal(t, 3, tree.Telemetry.NodeCount)
	assert.Equal(t, 2, tree.Telemetry.MaxDepth)
	assert.Zero(t, tree.Telemetry.ErrorCount)
	assert.Zero(t, tree.Telemetry.ParseTime, "basic telemetry records no timing")
}

func TestTelemetryCountsErrors(t *testing.T) {
	tree := ParseString("12LOL", WithLogger(quietLogger), WithTelemetryBasic())
	require.NotNil(t, tree.Telemetry)

	// one lex error plus the trailing-token parse error
	assert.Equal(t, 2, tree.Telemetry.ErrorCount)
}

func TestTelemetryTiming(t *testing.T) {
	tree := ParseString("f(a, b)", WithLogger(quietLogger), WithTelemetryTiming())
	require.NotNil(t, tree.Telemetry)

	tel := tree.Telemetry
	assert.Equal(t, 4, tel.NodeCount)
	assert.GreaterOrEqual(t, tel.TotalTime, tel.ParseTime)
	assert.GreaterOrEqual(t, tel.TotalTime, tel.LexTime)
}

func TestDebugEvents(t *testing.T) {
	tree := ParseString("a + b", WithLogger(quietLogger), WithDebugEvents())

	var names []string
	for _, ev := range tree.DebugEvents {
		names = append(names, ev.Event)
	}
	assert.Equal(t, []string{
		"enter_expression",
		"enter_expression",
		"exit_expression",
		"exit_expression",
	}, names)
	assert.Equal(t, "min_priority=0", tree.DebugEvents[0].Context)
}

func TestDebugEventsRecordErrors(t *testing.T) {
	tree := ParseString("a +", WithLogger(quietLogger), WithDebugEvents())

	last := tree.DebugEvents[len(tree.DebugEvents)-1]
	assert.Equal(t, "parse_error", last.Event)
	assert.Equal(t, "expected right side to be an expression, got end of file", last.Context)
}

func TestParserTelemetryAccessors(t *testing.T) {
	p := New(ParseString("x", WithLogger(quietLogger)).Tokens, WithLogger(quietLogger), WithTelemetryBasic(), WithDebugEvents())
	_, err := p.ParseExpression(0)
	require.NoError(t, err)

	assert.Equal(t, 1, p.GetTelemetry().NodeCount)
	assert.NotEmpty(t, p.GetDebugEvents())
}
