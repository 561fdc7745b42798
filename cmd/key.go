package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/DachengChen/sqlchat/config"
	"github.com/DachengChen/sqlchat/secrets"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage AI provider API keys in the OS keychain",
	Long: `The key command stores provider API keys in the OS keychain so they never
need to be written to ~/.sqlchat/config.json.

Keys are looked up in this order: environment variable, config file, keychain.`,
}

var keySetCmd = &cobra.Command{
	Use:       "set <provider>",
	Short:     "Store an API key",
	Example:   "  sqlchat key set groq\n  echo $KEY | sqlchat key set openai",
	Args:      cobra.ExactArgs(1),
	ValidArgs: keyProviders(),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := keyProvider(args[0])
		if err != nil {
			return err
		}
		store, err := openKeychain()
		if err != nil {
			return err
		}

		key, err := readKey(provider)
		if err != nil {
			return err
		}
		if key == "" {
			return fmt.Errorf("no key given")
		}
		if err := store.Set(provider, key); err != nil {
			return err
		}
		pterm.Success.Printf("Stored %s key in the keychain\n", provider)
		return nil
	},
}

var keyDeleteCmd = &cobra.Command{
	Use:       "delete <provider>",
	Short:     "Remove a stored API key",
	Args:      cobra.ExactArgs(1),
	ValidArgs: keyProviders(),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := keyProvider(args[0])
		if err != nil {
			return err
		}
		store, err := openKeychain()
		if err != nil {
			return err
		}
		if err := store.Delete(provider); err != nil {
			return err
		}
		pterm.Success.Printf("Removed %s key from the keychain\n", provider)
		return nil
	},
}

// keyProviders lists the providers that authenticate with an API key.
func keyProviders() []string {
	return []string{config.ProviderGroq, config.ProviderOpenAI, config.ProviderAnthropic, config.ProviderGemini}
}

func keyProvider(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if config.KeyEnvVar(name) == "" {
		return "", fmt.Errorf("%q does not use an API key. Choose one of: %s",
			name, strings.Join(keyProviders(), ", "))
	}
	return name, nil
}

// openKeychain returns the store opened by the root command, or an
// error when no native keychain is available.
func openKeychain() (*secrets.Store, error) {
	if keyStore != nil {
		return keyStore, nil
	}
	return secrets.Open()
}

// readKey prompts with a masked input on a terminal and reads one line
// from stdin otherwise.
func readKey(provider string) (string, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		key, err := pterm.DefaultInteractiveTextInput.
			WithMask("*").
			Show(fmt.Sprintf("%s API key", provider))
		return strings.TrimSpace(key), err
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read key from stdin: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func init() {
	keyCmd.AddCommand(keySetCmd, keyDeleteCmd)
	rootCmd.AddCommand(keyCmd)
}
