package pipeline

import (
	"fmt"

	"github.com/boekenzolder/stackscan/internal/gemini"
	"github.com/boekenzolder/stackscan/internal/ollama"
	"github.com/boekenzolder/stackscan/internal/openai"
	"github.com/boekenzolder/stackscan/internal/providers"
)

// ProviderFor returns the vision provider registered under the given name.
func ProviderFor(name string) (providers.Provider, error) {
	switch name {
	case "gemini":
		return gemini.New(), nil
	case "ollama":
		return ollama.New(), nil
	case "openai":
		return openai.New(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}
