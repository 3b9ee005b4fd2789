package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"webforge/internal/logging"
	"webforge/internal/models"
	"webforge/internal/services"
)

func main() {
	app := NewApp()

	rootCmd := &cobra.Command{
		Use:           "webforge",
		Short:         "Project builder: bundle, generate, snapshot and publish a hosted project",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			closeLog := logging.Init(".webforge/webforge.log")
			cobra.OnFinalize(func() { closeLog() })
			return app.startup(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.shutdown()
		},
	}

	rootCmd.AddCommand(
		newCreateCmd(app),
		newGenerateCmd(app),
		newChatCmd(app),
		newFilesCmd(app),
		newBundleCmd(app),
		newExportCmd(app),
		newRevertCmd(app),
		newPublishCmd(app),
		newTokenCmd(app),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func parseID(arg, what string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q", what, arg)
	}
	return uint(id), nil
}

func newCreateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := app.CreateProject(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("created project %d (%s)\n", project.ID, project.Name)
			return nil
		},
	}
}

func newGenerateCmd(app *App) *cobra.Command {
	var mode, theme, instructions string
	cmd := &cobra.Command{
		Use:   "generate <projectID> <prompt>",
		Short: "Run one generation turn against the hosted service",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			outcome, err := app.Generate(projectID, models.JobMode(mode), args[1], services.GenerationOptions{
				Theme:            theme,
				UserInstructions: instructions,
			})
			if err != nil {
				return err
			}
			fmt.Printf("job %s done: %s\n", outcome.JobID, outcome.Summary)
			for _, f := range outcome.TouchedFiles {
				fmt.Println("  touched:", f)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(models.JobModeEdit), "generation mode: create or edit")
	cmd.Flags().StringVar(&theme, "theme", "", "theme hint passed to the service")
	cmd.Flags().StringVar(&instructions, "instructions", "", "extra user instructions")
	return cmd
}

func newChatCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <projectID> <prompt>",
		Short: "Ask a question or request a plan without touching files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			result, err := app.Chat(projectID, args[1])
			if err != nil {
				return err
			}
			fmt.Println("[" + result.Kind + "]")
			if result.Message != "" {
				fmt.Println(result.Message)
			}
			for i, step := range result.PlanSteps {
				fmt.Printf("  %d. %s\n", i+1, step)
			}
			return nil
		},
	}
}

func newFilesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "files <projectID>",
		Short: "List the project's current file set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			files, err := app.Files(projectID)
			if err != nil {
				return err
			}
			for _, p := range files.Paths() {
				content, _ := files.Get(p)
				fmt.Printf("%s (%d bytes)\n", p, len(content))
			}
			return nil
		},
	}
}

func newBundleCmd(app *App) *cobra.Command {
	var cssOut bool
	cmd := &cobra.Command{
		Use:   "bundle <projectID>",
		Short: "Flatten the file set into one executable script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			css, script, err := app.Bundle(projectID)
			if err != nil {
				return err
			}
			if cssOut {
				fmt.Print(css)
				return nil
			}
			fmt.Print(script)
			return nil
		},
	}
	cmd.Flags().BoolVar(&cssOut, "css", false, "print the CSS blob instead of the script")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export <projectID>",
		Short: "Write the self-contained publish document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			doc, err := app.Export(projectID)
			if err != nil {
				return err
			}
			if outPath == "" {
				fmt.Print(doc)
				return nil
			}
			return os.WriteFile(outPath, []byte(doc), 0644)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (stdout when empty)")
	return cmd
}

func newRevertCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "revert <projectID> <turnID>",
		Short: "Restore the file set captured before a conversation turn",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			turnID, err := parseID(args[1], "turn id")
			if err != nil {
				return err
			}
			turn, err := app.Revert(projectID, turnID)
			if err != nil {
				return err
			}
			fmt.Println(turn.Content)
			return nil
		},
	}
}

func newPublishCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <projectID> <slug>",
		Short: "Deploy the bundled site under a settable-once subdomain slug",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			url, err := app.Publish(projectID, args[1])
			if err != nil {
				return err
			}
			fmt.Println("published:", url)
			return nil
		},
	}
}

func newTokenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "token <value>",
		Short: "Store the generation-service API token in the OS keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.StoreToken(args[0]); err != nil {
				return err
			}
			fmt.Println("token stored")
			return nil
		},
	}
}
