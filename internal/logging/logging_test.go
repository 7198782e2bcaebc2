package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel(" warning "))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("nonsense"))
}

func TestCtx_FallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	child := zerolog.New(&buf)

	ctx := WithLogger(context.Background(), child)
	l := Ctx(ctx)
	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")

	assert.Equal(t, L(), Ctx(context.Background()))
}

func TestAudit_WritesAuditFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), zerolog.New(&buf))

	AuditWithDetail(ctx, ActionGrantAdmin, -100, 42, "7", "admin granted")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, LogTypeAudit, entry[FieldLogType])
	assert.Equal(t, ActionGrantAdmin, entry[FieldAction])
	assert.EqualValues(t, -100, entry[FieldChatID])
	assert.EqualValues(t, 42, entry[FieldUserID])
	assert.Equal(t, "7", entry[FieldDetail])
}
