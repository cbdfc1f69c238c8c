package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PyLearn/backend/internal/domain/content"
)

func sampleTopic(key string) Topic {
	return Topic{
		Key:         key,
		Label:       "Sample",
		BadgeID:     "s",
		Color:       "blue",
		Description: "A sample topic",
		Intro:       "Lead.\n\nHeader: Body.",
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := New()

	require.NoError(t, reg.Register(sampleTopic("b")))
	require.NoError(t, reg.Register(sampleTopic("a")))

	err := reg.Register(sampleTopic("a"))
	assert.True(t, errors.Is(err, ErrDuplicateKey))

	got, err := reg.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Key)

	_, err = reg.Get("missing")
	assert.True(t, errors.Is(err, ErrTopicNotFound))

	keys := []string{}
	for _, topic := range reg.List() {
		keys = append(keys, topic.Key)
	}
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestRegistryRejectsInvalid(t *testing.T) {
	reg := New()

	bad := sampleTopic("ok")
	bad.Intro = "  "
	assert.Error(t, reg.Register(bad))

	bad = sampleTopic("Bad Key")
	assert.Error(t, reg.Register(bad))

	assert.Error(t, reg.Replace([]Topic{sampleTopic("x"), sampleTopic("x")}))
	assert.Zero(t, reg.Len())
}

func TestLoadSeed(t *testing.T) {
	topics, err := NewLoader(nil).LoadSeed()
	require.NoError(t, err)
	require.Len(t, topics, 4)

	for _, topic := range topics {
		doc := content.Parse(topic.Intro)
		assert.True(t, doc.HasLead, topic.Key)
		assert.NotEmpty(t, doc.Sections, topic.Key)
	}
}

func TestSeedDropsStrayProse(t *testing.T) {
	topics, err := NewLoader(nil).LoadSeed()
	require.NoError(t, err)

	for _, topic := range topics {
		if topic.Key != "control-flow" {
			continue
		}
		doc := content.Parse(topic.Intro)
		assert.Equal(t, 1, doc.Dropped)
		assert.Len(t, doc.Sections, 5)
		return
	}
	t.Fatal("control-flow topic missing from seed")
}

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{
			name:   "yaml",
			format: FormatYAML,
			data:   "topics:\n  - key: y\n    label: Y\n    intro: \"Lead.\\n\\nA: b.\"\n",
		},
		{
			name:   "toml",
			format: FormatTOML,
			data:   "[[topics]]\nkey = \"t\"\nlabel = \"T\"\nintro = \"\"\"\nLead.\n\nA: b.\n\"\"\"\n",
		},
		{
			name:   "json",
			format: FormatJSON,
			data:   `{"topics":[{"key":"j","label":"J","intro":"Lead.\n\nA: b."}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topics, err := Decode(tt.format, []byte(tt.data))
			require.NoError(t, err)
			require.Len(t, topics, 1)

			doc := content.Parse(topics[0].Intro)
			assert.Equal(t, "Lead.", doc.Lead)
			require.Len(t, doc.Sections, 1)
			assert.Equal(t, "A", doc.Sections[0].Header)
		})
	}
}

func TestDecodeTranscodesLatin1(t *testing.T) {
	// "Café" with é as a single ISO-8859-1 byte
	intro := "Le caf\xe9 est d\xe9j\xe0 pr\xeat, et la cr\xe8me fra\xeeche aussi. " +
		"Nous pr\xe9f\xe9rons le th\xe9 l\xe9ger apr\xe8s le d\xe9jeuner.\\n\\n" +
		"Menu: Caf\xe9 cr\xe8me, th\xe9 glac\xe9 et g\xe2teau \xe0 la fran\xe7aise."
	data := []byte("{\"topics\":[{\"key\":\"cafe\",\"label\":\"Caf\xe9\",\"intro\":\"" + intro + "\"}]}")

	topics, err := Decode(FormatJSON, data)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "Café", topics[0].Label)
}

func TestFormatFromName(t *testing.T) {
	f, err := FormatFromName("topics/Lists.YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = FormatFromName("notes.txt")
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nested", "deep"), 0o755))

	write := func(rel, data string) {
		require.NoError(t, os.WriteFile(filepath.Join(root, rel), []byte(data), 0o644))
	}
	write("a.json", `{"topics":[{"key":"a","label":"A","intro":"Lead.\n\nH: b."}]}`)
	write("nested/deep/b.yaml", "topics:\n  - key: b\n    label: B\n    intro: \"x\"\n")
	write("nested/readme.txt", "ignored")

	topics, err := NewLoader(nil).LoadDir(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "a", topics[0].Key)
	assert.Equal(t, "b", topics[1].Key)

	_, err = NewLoader(nil).LoadDir(context.Background(), filepath.Join(root, "missing"))
	assert.Error(t, err)
	_, err = NewLoader(nil).LoadDir(context.Background(), filepath.Join(root, "a.json"))
	assert.Error(t, err)
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/content/topics.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"topics":[{"key":"remote","label":"R","intro":"Lead.\n\nH: b."}]}`))
	}))
	defer srv.Close()

	loader := NewLoader(nil)
	loader.client.RetryMax = 0

	topics, err := loader.LoadURL(context.Background(), srv.URL+"/content/topics.json")
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "remote", topics[0].Key)

	_, err = loader.LoadURL(context.Background(), srv.URL+"/missing.json")
	assert.Error(t, err)

	_, err = loader.LoadURL(context.Background(), "ftp://example.com/x.json")
	assert.Error(t, err)
}

func TestPopulateOverridesSeed(t *testing.T) {
	root := t.TempDir()
	override := `{"topics":[{"key":"algorithms","label":"Custom","intro":"Lead.\n\nH: b."},{"key":"extra","label":"E","intro":"x"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "o.json"), []byte(override), 0o644))

	reg := New()
	require.NoError(t, NewLoader(nil).Populate(context.Background(), reg, Sources{Dir: root}))

	assert.Equal(t, 5, reg.Len())
	algo, err := reg.Get("algorithms")
	require.NoError(t, err)
	assert.Equal(t, "Custom", algo.Label)
}
