// Command cuento generates one personalized story from the command line
// and exports the book PDF, without the web flow.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"cuentomagico/internal/export"
	"cuentomagico/internal/generate"
	"cuentomagico/internal/llm"
	"cuentomagico/internal/logger"
	"cuentomagico/internal/story"
)

var (
	name      = flag.String("name", "", "Name of the protagonist")
	age       = flag.Int("age", 4, "Age of the protagonist (2-10)")
	gender    = flag.String("gender", "niño", "Gender of the protagonist: niño or niña")
	interests = flag.String("interests", "", "Comma-separated interests")
	storyType = flag.String("type", "mágica", "Story theme: aventura, mágica, tranquila, espacial, animales, misterio")
	language  = flag.String("language", "Español", "Story language")
	provider  = flag.String("provider", "openai", "LLM provider: openai or anthropic")
	outDir    = flag.String("out", "output", "Output directory for the PDF")
)

func main() {
	flag.Parse()

	prefs, err := story.NewPreferences(*name, *age, story.Gender(*gender), *interests, story.StoryType(*storyType), *language)
	if err != nil {
		fmt.Printf("Invalid preferences: %v\n", err)
		os.Exit(1)
	}

	factory := &llm.Factory{
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:     model(),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		Temperature:     0.8,
	}
	client, err := factory.New(*provider)
	if err != nil {
		fmt.Printf("Error building model client: %v\n", err)
		os.Exit(1)
	}

	generator := &generate.Generator{
		Source:   &generate.LLMSource{Client: client},
		PageSize: 3,
		MaxPages: 20,
	}

	fmt.Printf("Generating a story for %s...\n", prefs.Name)
	st, err := generator.Generate(context.Background(), prefs)
	if err != nil {
		fmt.Printf("Error generating story: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated %q with %d pages\n", st.Title, len(st.Pages))

	exporter := &export.Exporter{OutputDir: *outDir, Log: logger.New(logger.Config{Level: "info", Encoding: "console"})}
	path, err := exporter.Export(st, prefs.Name)
	if err != nil {
		fmt.Printf("Error exporting PDF: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Story saved to %s\n", path)
}

func model() string {
	if m := os.Getenv("OPENAI_MODEL"); m != "" {
		return m
	}
	return "gpt-4o-mini"
}
