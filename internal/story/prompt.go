package story

import (
	"fmt"
	"strings"
)

// SystemPrompt frames the model as a children's story author.
const SystemPrompt = "Eres un autor profesional de cuentos infantiles con experiencia en psicología infantil y narrativa literaria."

// BuildPrompt renders the generation instructions for one set of
// preferences. The output contract matters: first line is the title, the
// rest are paragraphs separated by line breaks.
func BuildPrompt(prefs UserPreferences) string {
	return fmt.Sprintf(`Actúa como un autor profesional de cuentos infantiles con experiencia en psicología infantil y narrativa literaria.
Escribes historias cálidas, reconfortantes y fáciles de leer en voz alta antes de dormir.
Tu objetivo es que el niño se sienta protagonista, pero con una narrativa fluida y literaria.

Detalles del protagonista:
- Nombre: %s
- Edad: %d años
- Género: %s
- Intereses: %s
- Tipo de historia: %s
- Idioma: %s

Reglas IMPORTANTES sobre el género:
- Usa siempre pronombres, adjetivos y referencias acordes al género indicado.
- Si el género es "niña", usa femenino en toda la narración.
- Si el género es "niño", usa masculino en toda la narración.
- Nunca asumas el género por el nombre.

Estructura narrativa:
1. Introducción breve y cálida.
2. Inicio de una aventura relacionada con sus intereses.
3. Aparición de un pequeño reto o curiosidad (sin miedo).
4. Resolución mediante valentía, imaginación o amabilidad.
5. Final feliz, soñoliento y reconfortante.

Reglas:
- Mínimo 45 párrafos cortos.
- Máximo 60 párrafos.
- Máximo 3 líneas por párrafo.
- Tono positivo y relajante.
- Mantén coherencia total de género en toda la historia.

Formato:
Primera línea: Título del cuento
Resto: párrafos separados por salto de línea.
`,
		prefs.Name,
		prefs.Age,
		prefs.Gender,
		strings.Join(prefs.Interests, ", "),
		prefs.StoryType,
		prefs.Language,
	)
}
