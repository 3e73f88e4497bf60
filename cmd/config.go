package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/suneung/internal/llm"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the pipeline config and the selected LLM provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		pcfg, err := loadPipelineConfig(cmd)
		if err != nil {
			return err
		}
		data, err := pcfg.Marshal()
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "# pipeline")
		out.Write(data)
		fmt.Fprintln(out)
		writeProviderSummary(out, llm.EnvConfig())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}

// writeProviderSummary prints the selected provider and model. API keys
// are never printed.
func writeProviderSummary(w io.Writer, cfg llm.Config) {
	model := ""
	switch cfg.Provider {
	case "anthropic":
		model = cfg.Anthropic.Model
	case "openai":
		model = cfg.OpenAI.Model
	case "gemini":
		model = cfg.Gemini.Model
	case "openrouter":
		model = cfg.OpenRouter.Model
	}

	fmt.Fprintln(w, "# llm")
	fmt.Fprintf(w, "provider: %s\n", cfg.Provider)
	if model != "" {
		fmt.Fprintf(w, "model: %s\n", model)
	}
	if cfg.FallbackModel != "" {
		fmt.Fprintf(w, "fallback_model: %s\n", cfg.FallbackModel)
	}
	ready := "yes"
	if err := cfg.Validate(); err != nil {
		ready = "no (" + err.Error() + ")"
	}
	fmt.Fprintf(w, "credentials: %s\n", ready)
}
