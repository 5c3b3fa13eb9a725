package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	ctx := WithContext(context.Background(), log)
	got := FromContext(ctx)
	got.Info().Str("action", "import").Msg("statement imported")

	assert.Contains(t, buf.String(), "statement imported")
	assert.Contains(t, buf.String(), "import")
}

func TestFromContextWithoutLogger(t *testing.T) {
	var buf bytes.Buffer
	log := FromContext(context.Background())
	log = log.Output(&buf)
	log.Info().Msg("dropped")

	assert.Empty(t, buf.String(), "missing logger falls back to no-op")
}
