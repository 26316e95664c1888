package commands

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/cppbind/internal/cli/config"
	"github.com/conduit-lang/cppbind/internal/cli/ui"
	"github.com/conduit-lang/cppbind/internal/cppdata"
	"github.com/conduit-lang/cppbind/internal/cppffi"
)

var (
	inspectInput string
	inspectType  string
	inspectABI   bool
)

// NewInspectCommand creates the inspect command
func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the types, methods or shim functions of a model",
		Example: `  cppbind inspect
  cppbind inspect --type gfx::Widget
  cppbind inspect --abi`,
		Args: cobra.NoArgs,
		RunE: runInspect,
	}

	cmd.Flags().StringVarP(&inspectInput, "input", "i", "", "Model file (default: input from config)")
	cmd.Flags().StringVarP(&inspectType, "type", "t", "", "List the methods of one type")
	cmd.Flags().BoolVar(&inspectABI, "abi", false, "List the shim functions that would be generated")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, data, err := loadInput(inspectInput)
	if err != nil {
		return err
	}
	data.EnsureExplicitDestructors()

	switch {
	case inspectType != "":
		return inspectMethods(cmd, data, inspectType)
	case inspectABI:
		lib := cfg.Name
		if lib == "" {
			lib = "lib"
		}
		return inspectShim(cmd, data, lib, cfg.Strict)
	default:
		inspectTypes(cmd, data)
		return nil
	}
}

// loadInput reads the model named by the flag or the config
func loadInput(flagValue string) (*config.Config, *cppdata.Data, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	input := flagValue
	if input == "" {
		input = cfg.Resolve(cfg.Input)
	}
	if input == "" {
		return nil, nil, fmt.Errorf("no model given: use --input or set input in cppbind.yml")
	}
	data, err := cppdata.LoadFile(input)
	if err != nil {
		return nil, nil, err
	}
	return cfg, data, nil
}

func inspectTypes(cmd *cobra.Command, data *cppdata.Data) {
	methods := make(map[string]int)
	for _, m := range data.Methods {
		methods[m.Scope]++
	}

	types := append([]cppdata.TypeData(nil), data.Types...)
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })

	table := ui.NewTable(cmd.OutOrStdout(), "NAME", "KIND", "HEADER", "SIZE", "METHODS")
	for _, td := range types {
		kind, size := "class", "-"
		switch {
		case td.IsEnum():
			kind = "enum"
		case td.IsTemplate():
			kind = "template"
		}
		if td.Class != nil && td.Class.Size != nil {
			size = strconv.Itoa(*td.Class.Size)
		}
		table.Append([]string{td.Name, kind, td.Header, size, strconv.Itoa(methods[td.Name])})
	}
	table.Render()

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d types, %d methods (%d free functions)\n",
		len(data.Types), len(data.Methods), methods[""])
}

func inspectMethods(cmd *cobra.Command, data *cppdata.Data, name string) error {
	if _, ok := data.FindType(name); !ok {
		names := make([]string, len(data.Types))
		for i, td := range data.Types {
			names[i] = td.Name
		}
		fmt.Fprint(cmd.ErrOrStderr(), ui.TypeNotFound(name, ui.Suggest(name, names, 3), noColor))
		return fmt.Errorf("unknown type %s", name)
	}

	table := ui.NewTable(cmd.OutOrStdout(), "DECLARATION", "VISIBILITY", "DISPATCH", "HEADER")
	for _, m := range data.MethodsOf(name) {
		table.Append([]string{m.ShortText(), string(m.Visibility), m.Dispatch().String(), m.Origin.IncludeFile})
	}
	table.Render()
	return nil
}

func inspectShim(cmd *cobra.Command, data *cppdata.Data, lib string, strict bool) error {
	result, err := cppffi.Generate(data, cppdata.NewResolver(data), cppffi.Options{LibName: lib, Strict: strict})
	if err != nil {
		return reportFailure(cmd, err)
	}

	table := ui.NewTable(cmd.OutOrStdout(), "SYMBOL", "RETURN", "WRAPS")
	for i := range result.Functions {
		f := &result.Functions[i]
		wraps := ""
		if f.Method != nil {
			wraps = f.Method.ShortText()
		}
		table.Append([]string{f.Name, f.Return.String(), wraps})
	}
	table.Render()

	ui.WriteDiagnostics(cmd.ErrOrStderr(), result.Diagnostics, noColor)
	return nil
}
