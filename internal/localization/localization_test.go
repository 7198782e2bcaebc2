package localization_test

import (
	"testing"
	"testing/fstest"

	"footybot/backend/internal/localization"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalizer_Embedded(t *testing.T) {
	l, err := localization.NewLocalizer()
	require.NoError(t, err)

	assert.Contains(t, l.Languages(), "en")
	for _, key := range []string{"start", "help", "not_admin", "presence_in", "teams_header", "button_in", "button_out"} {
		assert.NotEqual(t, key, l.GetString("en", key), "missing key %q", key)
	}
	assert.Equal(t, "✅ Ann is IN (3 playing)", l.Format("en", "presence_in", "Ann", 3))
}

func TestGetString_Fallbacks(t *testing.T) {
	fsys := fstest.MapFS{
		"en.json":    {Data: []byte(`{"hello": "Hello", "bye": "Bye"}`)},
		"uk.json":    {Data: []byte(`{"hello": "Привіт"}`)},
		"README.txt": {Data: []byte("ignored")},
	}
	l, err := localization.NewLocalizerFS(fsys)
	require.NoError(t, err)

	assert.Equal(t, "Привіт", l.GetString("uk", "hello"))
	assert.Equal(t, "Bye", l.GetString("uk", "bye"), "falls back to English")
	assert.Equal(t, "Hello", l.GetString("de", "hello"), "unknown language falls back to English")
	assert.Equal(t, "missing", l.GetString("uk", "missing"), "unknown key returns the key")
	assert.ElementsMatch(t, []string{"en", "uk"}, l.Languages())
}

func TestNewLocalizerFS_BadJSON(t *testing.T) {
	fsys := fstest.MapFS{"en.json": {Data: []byte(`{not json`)}}

	_, err := localization.NewLocalizerFS(fsys)

	assert.Error(t, err)
}
