package export

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cuentomagico/internal/story"
)

func TestFilename(t *testing.T) {
	cases := []struct {
		title, want string
	}{
		{"¡Luna y las Estrellas!", "Luna_y_las_Estrellas.pdf"},
		{"El Valle de los Dinosaurios", "El_Valle_de_los_Dinosaurios.pdf"},
		{"¿Dónde?  está...  el   tesoro", "Dnde_est_el_tesoro.pdf"},
		{"cuento_sencillo", "cuento_sencillo.pdf"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Filename(tc.title), "title %q", tc.title)
	}
}

func TestMergeOrphans(t *testing.T) {
	// line counts keyed by prefix, everything else wraps to two lines
	lineCount := func(p string) int {
		if strings.HasPrefix(p, "corto") {
			return 1
		}
		return 2
	}

	t.Run("single-line block absorbs the next", func(t *testing.T) {
		got := mergeOrphans([]string{"corto uno", "largo que sigue", "otro largo"}, lineCount)
		assert.Equal(t, []string{"corto uno largo que sigue", "otro largo"}, got)
	})

	t.Run("merged block is not re-examined", func(t *testing.T) {
		got := mergeOrphans([]string{"corto a", "corto b", "corto c"}, lineCount)
		// "corto a"+"corto b" merge; "corto c" is last and stays alone
		assert.Equal(t, []string{"corto a corto b", "corto c"}, got)
	})

	t.Run("trailing single line stays", func(t *testing.T) {
		got := mergeOrphans([]string{"largo", "corto final"}, lineCount)
		assert.Equal(t, []string{"largo", "corto final"}, got)
	})

	t.Run("whitespace trimmed", func(t *testing.T) {
		got := mergeOrphans([]string{"  corto x  ", "  siguiente largo  "}, lineCount)
		assert.Equal(t, []string{"corto x siguiente largo"}, got)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, mergeOrphans(nil, lineCount))
	})
}

func TestExportWritesFile(t *testing.T) {
	dir := t.TempDir()
	e := &Exporter{OutputDir: dir, Log: zerolog.Nop()}

	paragraphs := make([]string, 20)
	for i := range paragraphs {
		paragraphs[i] = "Luna caminó por el valle mientras las estrellas brillaban sobre los árboles y el río cantaba una canción muy suave."
	}
	st := story.Story{
		ID:        "pdf-test",
		Title:     "Luna y las Estrellas",
		Pages:     story.Paginate(paragraphs, 3, 20),
		CreatedAt: time.Now().UTC(),
	}

	path, err := e.Export(st, "Luna")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "Luna_y_las_Estrellas.pdf"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"), "output is a pdf document")
}

func TestWrapTextAccented(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 13)

	text := tr("Luna caminó por el valle mágico mientras los árboles susurraban canciones de cuna y un río pequeñito cantaba bajo las estrellas doradas de la noche.")
	lines := wrapText(pdf, text, 160)
	require.Greater(t, len(lines), 1, "long paragraph wraps to multiple lines")
	for _, line := range lines {
		assert.LessOrEqual(t, pdf.GetStringWidth(line), 160.0, "line %q exceeds the wrap width", line)
	}

	assert.Equal(t, []string{tr("sólo")}, wrapText(pdf, tr("sólo"), 160))
	assert.Empty(t, wrapText(pdf, "", 160))
}

func TestExportAccentedParagraphs(t *testing.T) {
	e := &Exporter{OutputDir: t.TempDir(), Log: zerolog.Nop()}

	paragraphs := make([]string, 48)
	for i := range paragraphs {
		paragraphs[i] = "Había una vez una niña pequeña que soñaba con dragones añiles, montañas heladas y un cielo lleno de fantasía, ¡qué emoción tan mágica sintió aquel día!"
	}
	st := story.Story{
		ID:        "acentos",
		Title:     "El Sueño Mágico de Ñoña",
		Pages:     story.Paginate(paragraphs, 3, 20),
		CreatedAt: time.Now().UTC(),
	}

	path, err := e.Export(st, "Ñoña")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
	assert.Greater(t, len(data), 2000, "multi-page body renders")
}

func TestExportWithoutRecipient(t *testing.T) {
	e := &Exporter{OutputDir: t.TempDir(), Log: zerolog.Nop()}
	st := story.Story{
		ID:    "no-recipient",
		Title: "Cuento Breve",
		Pages: [][]string{{"Un párrafo.", "Otro párrafo."}},
	}
	path, err := e.Export(st, "")
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
