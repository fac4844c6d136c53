// Command docs-assistant is a chat-driven editor for Google Docs and Sheets
// snapshots. Model replies that carry edit instructions become pending
// proposals; nothing touches a file until the user accepts.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"docs-assistant/internal/chat"
	"docs-assistant/internal/config"
	"docs-assistant/internal/corrector"
	"docs-assistant/internal/docs"
	"docs-assistant/internal/locator"
	"docs-assistant/internal/logger"
	"docs-assistant/internal/pipeline"
	"docs-assistant/internal/proposal"
	"docs-assistant/internal/provider"
)

var (
	flagConfig   string
	flagModel    string
	flagDataDir  string
	flagLogLevel string
)

func main() {
	root := &cobra.Command{
		Use:   "docs-assistant",
		Short: "Chat-driven editing of Docs and Sheets snapshots",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogging()
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&flagModel, "model", "", "model to use (overrides config)")
	root.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory for snapshots and proposals")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(chatCmd(), sendCmd(), listCmd(), acceptCmd(), rejectCmd(), locateCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func initLogging() error {
	cfg := logger.DefaultConfig()
	switch strings.ToLower(flagLogLevel) {
	case "debug":
		cfg.Level = logger.LevelDebug
	case "warn":
		cfg.Level = logger.LevelWarn
	case "error":
		cfg.Level = logger.LevelError
	default:
		cfg.Level = logger.LevelInfo
	}
	cfg.LogFilePath = filepath.Join(dataDir(), "docs-assistant.log")
	return logger.Init(cfg)
}

func dataDir() string {
	if flagDataDir != "" {
		return flagDataDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".docs-assistant"
	}
	return filepath.Join(home, ".docs-assistant")
}

// app bundles everything a command needs.
type app struct {
	cfg       *config.Manager
	store     *docs.LocalStore
	proposals *proposal.Manager
}

func newApp() (*app, error) {
	cfg, err := config.NewManager(flagConfig)
	if err != nil {
		return nil, err
	}
	if err := cfg.Load(); err != nil {
		return nil, err
	}

	store, err := docs.NewLocalStore(filepath.Join(dataDir(), "files"))
	if err != nil {
		return nil, err
	}

	proposals, err := proposal.NewManager(filepath.Join(dataDir(), "proposals"))
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, store: store, proposals: proposals}, nil
}

// newAssistant builds the full conversation stack, including the model
// connection. Commands that never call the model skip this.
func (a *app) newAssistant(ctx context.Context) (*chat.Assistant, error) {
	model := a.cfg.GetModel()
	if flagModel != "" {
		model = flagModel
	}

	gen, err := provider.NewChatModelGenerator(ctx, a.cfg.GetAPIKey(), a.cfg.GetBaseURL(), model)
	if err != nil {
		return nil, err
	}

	registry := provider.NewRegistry()
	registry.Register(model, gen)

	passes := []corrector.Pass{
		&corrector.PatternPass{},
		&corrector.FormulaSyntaxPass{},
		&corrector.CompletenessPass{},
	}
	if a.cfg.RefereeEnabled() {
		refGen, err := provider.NewChatModelGenerator(ctx, a.cfg.GetAPIKey(), a.cfg.GetBaseURL(), a.cfg.GetRefereeModel())
		if err != nil {
			return nil, err
		}
		pass := corrector.NewRefereePass(provider.NewModelReferee(refGen))
		pass.Timeout = time.Duration(a.cfg.GetRefereeTimeoutSeconds()) * time.Second
		passes = append(passes, pass)
	}

	p := pipeline.New(corrector.NewPipeline(passes...))
	return chat.NewAssistant(registry, p, a.store, a.store, a.proposals, model), nil
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <file-ref>",
		Short: "Interactive editing session against a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			assistant, err := a.newAssistant(cmd.Context())
			if err != nil {
				return err
			}
			a.cfg.SetLastFileRef(args[0])

			scanner := bufio.NewScanner(os.Stdin)
			fmt.Println("Type a request, 'accept'/'reject' for the last proposal, or 'quit'.")
			var lastProposal string
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				switch {
				case line == "":
					continue
				case line == "quit" || line == "exit":
					return nil
				case line == "accept" && lastProposal != "":
					if _, err := assistant.Accept(cmd.Context(), lastProposal); err != nil {
						fmt.Println("error:", err)
						continue
					}
					fmt.Println("applied.")
					lastProposal = ""
				case line == "reject" && lastProposal != "":
					if err := assistant.Reject(lastProposal); err != nil {
						fmt.Println("error:", err)
						continue
					}
					fmt.Println("rejected.")
					lastProposal = ""
				default:
					turn, err := assistant.Send(cmd.Context(), args[0], line)
					if err != nil {
						fmt.Println("error:", err)
						continue
					}
					fmt.Println(turn.Response)
					if turn.Proposal != nil {
						lastProposal = turn.Proposal.ID
						fmt.Printf("proposal %s (%s):\n%s\n", turn.Proposal.ID,
							turn.Proposal.Edit.Kind, turn.Proposal.Preview)
					}
				}
			}
		},
	}
}

func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <file-ref> <message>",
		Short: "Run a single chat turn",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			assistant, err := a.newAssistant(cmd.Context())
			if err != nil {
				return err
			}

			turn, err := assistant.Send(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Println(turn.Response)
			if turn.Proposal != nil {
				fmt.Printf("proposal %s (%s):\n%s\n", turn.Proposal.ID,
					turn.Proposal.Edit.Kind, turn.Proposal.Preview)
			}
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List edit proposals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			for _, r := range a.proposals.List() {
				fmt.Printf("%s  %-8s  %-13s  %s\n", r.ID, r.Status, r.Edit.Kind, r.FileID)
				if r.FailureMsg != "" {
					fmt.Printf("    last failure: %s (retries: %d)\n", r.FailureMsg, r.RetryCount)
				}
			}
			return nil
		},
	}
}

func acceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <proposal-id>",
		Short: "Apply a pending proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			assistant, err := a.newAssistant(cmd.Context())
			if err != nil {
				return err
			}
			record, err := assistant.Accept(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("applied %s (%s)\n", record.ID, record.Edit.Kind)
			return nil
		},
	}
}

func rejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <proposal-id>",
		Short: "Discard a pending proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.proposals.Reject(args[0]); err != nil {
				return err
			}
			fmt.Println("rejected", args[0])
			return nil
		},
	}
}

func locateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locate <file-id> <text>",
		Short: "Show where a findText hint resolves in a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			doc, err := a.store.FetchDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			m, err := locator.Locate(doc.Content, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("paragraph %d, offset %d, length %d (%s confidence)\n",
				m.ParagraphIndex, m.Offset, m.Length, m.Tier)
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file-id> <snapshot.json>",
		Short: "Import a document or spreadsheet snapshot into the local store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			filesDir := filepath.Join(dataDir(), "files")
			if err := os.MkdirAll(filesDir, 0755); err != nil {
				return err
			}
			dst := filepath.Join(filesDir, args[0]+".json")
			if err := os.WriteFile(dst, data, 0644); err != nil {
				return err
			}
			fmt.Println("imported", args[0])
			return nil
		},
	}
}
