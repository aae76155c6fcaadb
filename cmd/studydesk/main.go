package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"studydesk/internal/bootstrap"
	deskinadapter "studydesk/internal/modules/desk/adapter/in"
	deskdto "studydesk/internal/modules/desk/dto"
	"studydesk/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "studydesk",
		Short:         "Exam countdowns, todos, reading pace and notes in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir(), "data directory")

	root.AddCommand(newTUICmd(&dataDir))
	root.AddCommand(newStatusCmd(&dataDir))
	root.AddCommand(newSchoolCmd(&dataDir))
	root.AddCommand(newTodoCmd(&dataDir))
	root.AddCommand(newMaterialCmd(&dataDir))
	root.AddCommand(newImageCmd(&dataDir))
	root.AddCommand(newNotesCmd(&dataDir))
	return root
}

func loadApp(dataDir string) (*bootstrap.App, error) {
	cfg, err := config.Load(dataDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

// withApp runs fn against a freshly wired app and closes it afterwards, so
// pending writes land before the process exits.
func withApp(dataDir string, fn func(ctx context.Context, app *bootstrap.App) error) (err error) {
	app, err := loadApp(dataDir)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer func() {
		if cerr := app.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, app)
}

func newTUICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the studydesk terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(_ context.Context, app *bootstrap.App) error {
				return bootstrap.RunTUI(app)
			})
		},
	}
}

func newStatusCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show countdowns, reading pace and open todos",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				snap, err := loadSnapshot(ctx, cmd, app, deskinadapter.FieldsReady)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printCountdowns(out, snap)
				_, _ = fmt.Fprintln(out)
				printMaterial(out, snap.Material)
				_, _ = fmt.Fprintf(out, "\ntodos: %d open / %d\nimages: %d\n", snap.OpenTodos, len(snap.Todos), len(snap.Images))
				printUnsaved(out, snap)
				return nil
			})
		},
	}
}

func newSchoolCmd(dataDir *string) *cobra.Command {
	school := &cobra.Command{Use: "school", Short: "Target schools and exam dates"}

	var panel int
	var name, date string
	set := &cobra.Command{
		Use:   "set --panel <n> --name <school> --date <date>",
		Short: "Save a school panel (name and exam date together)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				snap, err := app.DeskCLI.SetSchool(ctx, panel, name, date)
				if err != nil {
					return err
				}
				printCountdowns(cmd.OutOrStdout(), snap)
				printUnsaved(cmd.OutOrStdout(), snap)
				return nil
			})
		},
	}
	set.Flags().IntVar(&panel, "panel", 1, "panel number (1 is the primary target)")
	set.Flags().StringVar(&name, "name", "", "school name")
	set.Flags().StringVar(&date, "date", "", "exam date: 2006-01-02 or natural language (\"in 90 days\"); empty clears it")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show all school panels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				snap, err := loadSnapshot(ctx, cmd, app, deskinadapter.FieldsReady)
				if err != nil {
					return err
				}
				printCountdowns(cmd.OutOrStdout(), snap)
				return nil
			})
		},
	}

	school.AddCommand(set, show)
	return school
}

func newTodoCmd(dataDir *string) *cobra.Command {
	todo := &cobra.Command{Use: "todo", Short: "Todo list"}

	todo.AddCommand(&cobra.Command{
		Use:   "add <text...>",
		Short: "Append a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				snap, err := app.DeskCLI.AddTodo(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				printTodos(cmd.OutOrStdout(), snap.Todos)
				return nil
			})
		},
	})

	todo.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List todos",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				snap, err := loadSnapshot(ctx, cmd, app, deskinadapter.TodosReady)
				if err != nil {
					return err
				}
				printTodos(cmd.OutOrStdout(), snap.Todos)
				return nil
			})
		},
	})

	todo.AddCommand(&cobra.Command{
		Use:   "done <n>",
		Short: "Toggle completion of todo n",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid todo number %q", args[0])
			}
			return withApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				snap, err := app.DeskCLI.ToggleTodo(ctx, index)
				if err != nil {
					return err
				}
				printTodos(cmd.OutOrStdout(), snap.Todos)
				return nil
			})
		},
	})

	var yes bool
	rm := &cobra.Command{
		Use:   "rm <n>",
		Short: "Delete todo n",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid todo number %q", args[0])
			}
			return withApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				if !yes {
					snap, err := loadSnapshot(ctx, cmd, app, deskinadapter.TodosReady)
					if err != nil {
						return err
					}
					if index < 1 || index > len(snap.Todos) {
						return fmt.Errorf("no todo %d", index)
					}
					ok, err := confirm(fmt.Sprintf("Delete todo %d %q?", index, snap.Todos[index-1].Text))
					if err != nil || !ok {
						return err
					}
				}
				snap, err := app.DeskCLI.RemoveTodo(ctx, index)
				if err != nil {
					return err
				}
				printTodos(cmd.OutOrStdout(), snap.Todos)
				return nil
			})
		},
	}
	rm.Flags().BoolVar(&yes, "yes", false, "skip confirmation")
	todo.AddCommand(rm)
	return todo
}

func newMaterialCmd(dataDir *string) *cobra.Command {
	material := &cobra.Command{Use: "material", Short: "Reading material and pace"}

	var name, total, current string
	set := &cobra.Command{
		Use:   "set [--name] [--total] [--current]",
		Short: "Update the reading material",
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			var update deskinadapter.MaterialUpdate
			if flags.Changed("name") {
				update.Name = &name
			}
			if flags.Changed("total") {
				update.Total = &total
			}
			if flags.Changed("current") {
				update.Current = &current
			}
			if update.Name == nil && update.Total == nil && update.Current == nil {
				return fmt.Errorf("one of --name, --total or --current is required")
			}
			return withApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				snap, err := app.DeskCLI.SetMaterial(ctx, update)
				if err != nil {
					return err
				}
				printMaterial(cmd.OutOrStdout(), snap.Material)
				printUnsaved(cmd.OutOrStdout(), snap)
				return nil
			})
		},
	}
	set.Flags().StringVar(&name, "name", "", "material name")
	set.Flags().StringVar(&total, "total", "", "total pages")
	set.Flags().StringVar(&current, "current", "", "current page")

	pdf := &cobra.Command{
		Use:   "pdf <path>",
		Short: "Take material name and total pages from a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				snap, err := app.DeskCLI.LoadMaterialFromPDF(ctx, args[0])
				if err != nil {
					return err
				}
				printMaterial(cmd.OutOrStdout(), snap.Material)
				return nil
			})
		},
	}

	material.AddCommand(set, pdf)
	return material
}

func newImageCmd(dataDir *string) *cobra.Command {
	image := &cobra.Command{Use: "image", Short: "Review image scrapbook"}

	image.AddCommand(&cobra.Command{
		Use:   "add <path>",
		Short: "Add an image file (image/*, 10 MB max by default)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.DeskCLI.AddImageFile(ctx, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added #%d %s (%s, %s)\n",
					out.Image.ID, out.Image.Name, out.Image.MIME, humanize.IBytes(uint64(out.Image.Size)))
				return nil
			})
		},
	})

	image.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List images",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				snap, err := loadSnapshot(ctx, cmd, app, deskinadapter.ImagesReady)
				if err != nil {
					return err
				}
				printImages(cmd.OutOrStdout(), snap.Images)
				return nil
			})
		},
	})

	var yes bool
	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				if !yes {
					detail, err := app.DeskCLI.Image(ctx, id)
					if err != nil {
						return err
					}
					ok, err := confirm(fmt.Sprintf("Delete image #%d %q?", id, detail.Name))
					if err != nil || !ok {
						return err
					}
				}
				snap, err := app.DeskCLI.RemoveImage(ctx, id)
				if err != nil {
					return err
				}
				printImages(cmd.OutOrStdout(), snap.Images)
				return nil
			})
		},
	}
	rm.Flags().BoolVar(&yes, "yes", false, "skip confirmation")
	image.AddCommand(rm)

	image.AddCommand(&cobra.Command{
		Use:   "open <id>",
		Short: "Open an image in the system viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.DeskCLI.OpenImage(ctx, id); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "opened image #%d\n", id)
				return nil
			})
		},
	})
	return image
}

func newNotesCmd(dataDir *string) *cobra.Command {
	notes := &cobra.Command{Use: "notes", Short: "Free-form notes"}

	notes.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the notes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				snap, err := loadSnapshot(ctx, cmd, app, deskinadapter.FieldsReady)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), snap.Notes)
				return nil
			})
		},
	})

	notes.AddCommand(&cobra.Command{
		Use:   "set <text...>",
		Short: "Replace the notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, func(ctx context.Context, app *bootstrap.App) error {
				snap, err := app.DeskCLI.SetNotes(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				printUnsaved(cmd.OutOrStdout(), snap)
				return nil
			})
		},
	})
	return notes
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// loadSnapshot hydrates for a read-only command. A hydration error that
// spared the part being shown is printed as a warning.
func loadSnapshot(ctx context.Context, cmd *cobra.Command, app *bootstrap.App, ready func(deskdto.Snapshot) bool) (deskdto.Snapshot, error) {
	snap, err := app.DeskCLI.Status(ctx)
	if err != nil {
		if !ready(snap) {
			return deskdto.Snapshot{}, err
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	return snap, nil
}

func confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Delete").
		Negative("Keep").
		Value(&ok).
		Run()
	return ok, err
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid image id %q", raw)
	}
	return id, nil
}

func printCountdowns(w io.Writer, snap deskdto.Snapshot) {
	for _, cd := range snap.Countdowns {
		name := cd.Name
		if name == "" {
			name = "(no school)"
		}
		switch {
		case cd.ExamDate == "":
			_, _ = fmt.Fprintf(w, "%d\t%s\tno exam date\n", cd.Panel, name)
		default:
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d days\n", cd.Panel, name, cd.ExamDate, cd.DaysRemaining)
		}
	}
}

func printMaterial(w io.Writer, m deskdto.Material) {
	name := m.Name
	if name == "" {
		name = "(no material)"
	}
	_, _ = fmt.Fprintf(w, "material: %s\npages: %d / %d (%d%%)\n", name, m.CurrentPage, m.TotalPages, m.Percent)
	switch {
	case m.Completed:
		_, _ = fmt.Fprintln(w, "pace: done")
	case m.PagesPerDay > 0:
		_, _ = fmt.Fprintf(w, "pace: %d pages/day for %d days\n", m.PagesPerDay, m.DaysRemaining)
	default:
		_, _ = fmt.Fprintln(w, "pace: -")
	}
}

func printTodos(w io.Writer, todos []deskdto.Todo) {
	if len(todos) == 0 {
		_, _ = fmt.Fprintln(w, "no todos")
		return
	}
	for _, t := range todos {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s %s\n", t.Index, box, t.Text)
	}
}

func printImages(w io.Writer, images []deskdto.Image) {
	if len(images) == 0 {
		_, _ = fmt.Fprintln(w, "no images")
		return
	}
	for _, img := range images {
		_, _ = fmt.Fprintf(w, "#%d\t%s\t%s\t%s\t%dx%d\t%s\n",
			img.ID, img.Name, img.MIME, humanize.IBytes(uint64(img.Size)), img.Width, img.Height, humanize.Time(img.CreatedAt))
	}
}

func printUnsaved(w io.Writer, snap deskdto.Snapshot) {
	if len(snap.Unsaved) > 0 {
		_, _ = fmt.Fprintf(w, "warning: not saved: %s (see log)\n", strings.Join(snap.Unsaved, ", "))
	}
}
