package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/cppbind/internal/cli/ui"
	"github.com/conduit-lang/cppbind/internal/cppdata"
	utilstrings "github.com/conduit-lang/cppbind/internal/util/strings"
)

var (
	splitInput  string
	splitOutput string
)

// NewSplitCommand creates the split command
func NewSplitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a model into one model file per header",
		Long: `Split a model into one model file per header.

Every method lands in the file of the header that declares it and every
type in the file of its own header. Instantiation registry entries follow
their template class; entries for templates from a dependency go to
global.json. Headers whose file names would collide are rejected.`,
		Example: `  cppbind split --output build/headers`,
		Args:    cobra.NoArgs,
		RunE:    runSplit,
	}

	cmd.Flags().StringVarP(&splitInput, "input", "i", "", "Model file (default: input from config)")
	cmd.Flags().StringVarP(&splitOutput, "output", "o", "headers", "Directory for the partition files")

	return cmd
}

func runSplit(cmd *cobra.Command, args []string) error {
	_, data, err := loadInput(splitInput)
	if err != nil {
		return err
	}

	parts := data.SplitByHeaders()
	headers := make([]string, 0, len(parts))
	for h := range parts {
		headers = append(headers, h)
	}
	sort.Strings(headers)

	files, err := partitionFiles(headers)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(splitOutput, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	table := ui.NewTable(cmd.OutOrStdout(), "HEADER", "FILE", "TYPES", "METHODS")
	for _, h := range headers {
		name := files[h]
		if err := writePartition(filepath.Join(splitOutput, name), parts[h]); err != nil {
			return err
		}
		table.Append([]string{h, name, strconv.Itoa(len(parts[h].Types)), strconv.Itoa(len(parts[h].Methods))})
	}
	table.Render()

	ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Wrote %d partitions to %s", len(headers), splitOutput), noColor)
	return nil
}

// partitionFile names the model file of a header partition
func partitionFile(header string) string {
	name := utilstrings.ToIdentifier(header)
	if name == "" {
		name = "global"
	}
	return name + ".json"
}

// partitionFiles names the model file of every header and fails when two
// headers would share a file
func partitionFiles(headers []string) (map[string]string, error) {
	files := make(map[string]string, len(headers))
	owner := make(map[string]string, len(headers))
	for _, h := range headers {
		name := partitionFile(h)
		if other, ok := owner[name]; ok {
			return nil, fmt.Errorf("headers %q and %q both map to %s", other, h, name)
		}
		owner[name] = h
		files[h] = name
	}
	return files, nil
}

func writePartition(path string, data *cppdata.Data) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := data.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
