package story_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cuentomagico/internal/story"
)

func TestNewPreferences(t *testing.T) {
	t.Run("valid form", func(t *testing.T) {
		prefs, err := story.NewPreferences("  Luna ", 6, story.GenderGirl, "dinosaurios, estrellas , ", story.TypeSpace, "")
		require.NoError(t, err)
		assert.Equal(t, "Luna", prefs.Name)
		assert.Equal(t, 6, prefs.Age)
		assert.Equal(t, []string{"dinosaurios", "estrellas"}, prefs.Interests)
		assert.Equal(t, "Español", prefs.Language, "language defaults when blank")
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := story.NewPreferences("   ", 6, story.GenderGirl, "dragones", story.TypeMagic, "")
		assert.ErrorIs(t, err, story.ErrIncompletePreferences)
	})

	t.Run("missing interests", func(t *testing.T) {
		_, err := story.NewPreferences("Mateo", 6, story.GenderBoy, " , ,", story.TypeMagic, "")
		assert.ErrorIs(t, err, story.ErrIncompletePreferences)
	})

	t.Run("age out of range", func(t *testing.T) {
		for _, age := range []int{story.MinAge - 1, story.MaxAge + 1} {
			_, err := story.NewPreferences("Mateo", age, story.GenderBoy, "piratas", story.TypeAdventure, "")
			assert.Error(t, err, "age %d", age)
		}
	})

	t.Run("unknown gender", func(t *testing.T) {
		_, err := story.NewPreferences("Mateo", 5, story.Gender("otro"), "piratas", story.TypeAdventure, "")
		assert.Error(t, err)
	})

	t.Run("unknown story type", func(t *testing.T) {
		_, err := story.NewPreferences("Mateo", 5, story.GenderBoy, "piratas", story.StoryType("terror"), "")
		assert.Error(t, err)
	})
}

func TestSplitInterests(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, story.SplitInterests(" a , b "))
	assert.Empty(t, story.SplitInterests("  ,  , "))
	assert.Equal(t, []string{"un solo interés"}, story.SplitInterests("un solo interés"))
}

func TestPaginate(t *testing.T) {
	paras := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("párrafo %d", i+1)
		}
		return out
	}

	t.Run("page count", func(t *testing.T) {
		cases := []struct {
			paragraphs, pageSize, maxPages, wantPages int
		}{
			{0, 3, 20, 0},
			{1, 3, 20, 1},
			{3, 3, 20, 1},
			{4, 3, 20, 2},
			{48, 3, 20, 16},
			{60, 3, 20, 20},
			{61, 3, 20, 20},
			{100, 3, 20, 20},
		}
		for _, tc := range cases {
			pages := story.Paginate(paras(tc.paragraphs), tc.pageSize, tc.maxPages)
			assert.Len(t, pages, tc.wantPages, "%d paragraphs", tc.paragraphs)
		}
	})

	t.Run("preserves order and grouping", func(t *testing.T) {
		pages := story.Paginate(paras(7), 3, 20)
		require.Len(t, pages, 3)
		assert.Equal(t, []string{"párrafo 1", "párrafo 2", "párrafo 3"}, pages[0])
		assert.Equal(t, []string{"párrafo 7"}, pages[2])
	})

	t.Run("truncates beyond maxPages", func(t *testing.T) {
		pages := story.Paginate(paras(10), 2, 3)
		require.Len(t, pages, 3)
		assert.Equal(t, []string{"párrafo 5", "párrafo 6"}, pages[2])
	})

	t.Run("invalid parameters", func(t *testing.T) {
		assert.Nil(t, story.Paginate(paras(5), 0, 20))
		assert.Nil(t, story.Paginate(paras(5), 3, 0))
	})
}

func TestParse(t *testing.T) {
	t.Run("title cleanup", func(t *testing.T) {
		raw := "## **\"El Valle de los Dinosaurios\"**\n\nHabía una vez una niña llamada Luna.\nLe encantaban los dinosaurios."
		title, paragraphs, err := story.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "El Valle de los Dinosaurios", title)
		require.Len(t, paragraphs, 2)
		assert.Equal(t, "Había una vez una niña llamada Luna.", paragraphs[0])
	})

	t.Run("blank lines dropped", func(t *testing.T) {
		raw := "\n\nTítulo\n\n\nPrimero\n\nSegundo\n"
		title, paragraphs, err := story.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "Título", title)
		assert.Equal(t, []string{"Primero", "Segundo"}, paragraphs)
	})

	t.Run("title only", func(t *testing.T) {
		title, paragraphs, err := story.Parse("Un cuento sin cuerpo")
		require.NoError(t, err)
		assert.Equal(t, "Un cuento sin cuerpo", title)
		assert.Empty(t, paragraphs)
	})

	t.Run("empty output", func(t *testing.T) {
		_, _, err := story.Parse("  \n\n \t ")
		assert.ErrorIs(t, err, story.ErrEmptyText)
	})
}

func TestParseAndPaginateLongStory(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("*El Valle de los Dinosaurios*\n")
	for i := 0; i < 48; i++ {
		fmt.Fprintf(&sb, "Párrafo número %d del cuento.\n", i+1)
	}

	title, paragraphs, err := story.Parse(sb.String())
	require.NoError(t, err)
	assert.Equal(t, "El Valle de los Dinosaurios", title)
	require.Len(t, paragraphs, 48)

	pages := story.Paginate(paragraphs, 3, 20)
	assert.Len(t, pages, 16)
	for i, page := range pages {
		assert.Len(t, page, 3, "page %d", i)
	}
}

func TestStoryNew(t *testing.T) {
	s := story.New("Luna y las Estrellas", []string{"a", "b", "c", "d"}, "raw", 3, 20)
	assert.NotEmpty(t, s.ID)
	assert.False(t, s.CreatedAt.IsZero())
	require.Len(t, s.Pages, 2)
	assert.Equal(t, []string{"a", "b", "c", "d"}, s.Paragraphs())

	other := story.New("Otro", nil, "", 3, 20)
	assert.NotEqual(t, s.ID, other.ID)
}

func TestBuildPrompt(t *testing.T) {
	prefs, err := story.NewPreferences("Luna", 6, story.GenderGirl, "dinosaurios, pintar", story.TypeAdventure, "")
	require.NoError(t, err)

	prompt := story.BuildPrompt(prefs)
	assert.Contains(t, prompt, "Nombre: Luna")
	assert.Contains(t, prompt, "Edad: 6 años")
	assert.Contains(t, prompt, "Género: niña")
	assert.Contains(t, prompt, "Intereses: dinosaurios, pintar")
	assert.Contains(t, prompt, "Tipo de historia: aventura")
	assert.Contains(t, prompt, "Idioma: Español")
	assert.Contains(t, prompt, "Mínimo 45 párrafos")
	assert.Contains(t, prompt, "Primera línea: Título del cuento")
	assert.Contains(t, prompt, "Nunca asumas el género por el nombre")
}

func TestStripMarkup(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Un párrafo normal.", "Un párrafo normal."},
		{"Texto con **negrita** y *cursiva*.", "Texto con negrita y cursiva."},
		{"# Encabezado", "Encabezado"},
		{"Texto   con\tespacios   raros", "Texto con espacios raros"},
		{"`código` inline", "código inline"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, story.StripMarkup(tc.in), "input %q", tc.in)
	}
}
