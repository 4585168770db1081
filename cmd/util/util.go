package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rowan-kv/rowan/lib/codec"
	"github.com/rowan-kv/rowan/lib/storage"
	"github.com/rowan-kv/rowan/lib/storage/engines/cedar"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("rowan")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetValueCodec creates the value codec selected by configuration
func GetValueCodec() (codec.Codec[string], error) {
	switch viper.GetString("codec") {
	case "string":
		return codec.String(), nil
	case "json":
		return codec.JSON[string](), nil
	case "gob":
		return codec.GOB[string](), nil
	default:
		return nil, fmt.Errorf("invalid codec %s", viper.GetString("codec"))
	}
}

// OpenStore creates a cedar store and, if the configured snapshot file
// exists, loads it. A missing file yields an empty store so first use and
// reuse go through the same path.
func OpenStore() (storage.Store, error) {
	store := cedar.NewCedarStore(nil)

	path := viper.GetString("snapshot")
	if path == "" {
		return store, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		store.Close()
		return nil, fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	defer file.Close()

	if err := store.Load(file); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load snapshot %s: %w", path, err)
	}
	return store, nil
}

// SaveStore writes the store back to the configured snapshot file. A
// command that never mutates does not need to call this.
func SaveStore(store storage.Store) error {
	path := viper.GetString("snapshot")
	if path == "" {
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot %s: %w", path, err)
	}
	defer file.Close()

	return store.Save(file)
}
