package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/san-kum/navcore/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func pathsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "manage the recorded path library",
	}
	cmd.PersistentFlags().String("library", "", "path library database (default <data>/paths.db)")
	_ = viper.BindPFlag("library", cmd.PersistentFlags().Lookup("library"))

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "list stored paths",
			Args:  cobra.NoArgs,
			RunE: withLibrary(func(cmd *cobra.Command, lib *storage.PathLibrary, args []string) error {
				names, err := lib.Names()
				if err != nil {
					return err
				}
				if len(names) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no paths stored")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tWAYPOINTS\tSPEED\tLENGTH\tDOCKING")
				for _, name := range names {
					p, err := lib.Get(name)
					if err != nil {
						return err
					}
					docking := 0
					for _, wp := range p.Waypoints {
						if wp.Docking {
							docking++
						}
					}
					fmt.Fprintf(w, "%s\t%d\t%.1f\t%.1fm\t%d\n", p.Name, len(p.Waypoints), p.Speed, p.Length(), docking)
				}
				return w.Flush()
			}),
		},
		&cobra.Command{
			Use:   "import [file...]",
			Short: "import paths from text files",
			Args:  cobra.MinimumNArgs(1),
			RunE: withLibrary(func(cmd *cobra.Command, lib *storage.PathLibrary, args []string) error {
				for _, file := range args {
					data, err := os.ReadFile(file)
					if err != nil {
						return err
					}
					n, err := lib.ImportText(string(data))
					if err != nil {
						return fmt.Errorf("%s: %w", file, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: imported %d paths\n", file, n)
				}
				return nil
			}),
		},
		exportPathsCommand(),
		&cobra.Command{
			Use:   "delete [name...]",
			Short: "delete stored paths",
			Args:  cobra.MinimumNArgs(1),
			RunE: withLibrary(func(cmd *cobra.Command, lib *storage.PathLibrary, args []string) error {
				for _, name := range args {
					if err := lib.Delete(name); err != nil {
						return err
					}
					log.Info().Str("path", name).Msg("deleted")
				}
				return nil
			}),
		},
	)
	return cmd
}

func exportPathsCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export [name...]",
		Short: "write paths in the text format, every path when none are named",
		RunE: withLibrary(func(cmd *cobra.Command, lib *storage.PathLibrary, args []string) error {
			text, err := lib.ExportText(args...)
			if err != nil {
				return err
			}
			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}
			return os.WriteFile(output, []byte(text+"\n"), 0644)
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func libraryPath() string {
	if lib := viper.GetString("library"); lib != "" {
		return lib
	}
	return filepath.Join(viper.GetString("data"), "paths.db")
}

// withLibrary opens the path library around fn.
func withLibrary(fn func(*cobra.Command, *storage.PathLibrary, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		file := libraryPath()
		if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
			return err
		}
		lib, err := storage.OpenPathLibrary(file)
		if err != nil {
			return err
		}
		defer lib.Close()
		return fn(cmd, lib, args)
	}
}
